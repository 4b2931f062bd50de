package browser

// The bridge protocol is JSON over a single websocket. The browser front-end
// owns the native speech, synthesis, and camera engines; the bridge drives
// them with commands and mirrors their state from events.

// event is a message from the browser.
//
// Types:
//
//	transcript  one recognition result; Index is the engine's result index,
//	            Final marks the utterance as complete
//	speech      recognition session state: listening | stopped | error
//	tts         synthesis state: started | ended
//	camera      camera state: active | inactive | error; carries ID when it
//	            answers a camera-start request
//	frame       answer to a capture request; Data is a data URL or base64
//	page        the router's active page: home | scan | chat
type event struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Index int    `json:"index,omitempty"`
	Final bool   `json:"final,omitempty"`
	Text  string `json:"text,omitempty"`
	State string `json:"state,omitempty"`
	Data  string `json:"data,omitempty"`
	Page  string `json:"page,omitempty"`
	Error string `json:"error,omitempty"`
}

// command is a message to the browser: listen, stop-listen, speak,
// stop-speak, camera-start, camera-stop, capture, vibrate, navigate,
// notify. ID is set when a reply event is expected.
type command struct {
	Cmd    string `json:"cmd"`
	ID     string `json:"id,omitempty"`
	Text   string `json:"text,omitempty"`
	Page   string `json:"page,omitempty"`
	Lang   string `json:"lang,omitempty"`
	Millis int    `json:"ms,omitempty"`
	Urgent bool   `json:"urgent,omitempty"`
}

const (
	evTranscript = "transcript"
	evSpeech     = "speech"
	evTTS        = "tts"
	evCamera     = "camera"
	evFrame      = "frame"
	evPage       = "page"

	cmdListen      = "listen"
	cmdStopListen  = "stop-listen"
	cmdSpeak       = "speak"
	cmdStopSpeak   = "stop-speak"
	cmdCameraStart = "camera-start"
	cmdCameraStop  = "camera-stop"
	cmdCapture     = "capture"
	cmdVibrate     = "vibrate"
	cmdNavigate    = "navigate"
	cmdNotify      = "notify"

	stateListening = "listening"
	stateStopped   = "stopped"
	stateStarted   = "started"
	stateEnded     = "ended"
	stateActive    = "active"
	stateInactive  = "inactive"
	stateError     = "error"
)
