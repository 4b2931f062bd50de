package domain

type Page string

const (
	PageHome Page = "home"
	PageScan Page = "scan"
	PageChat Page = "chat"
)

type IntentKind string

const (
	IntentNavigateHome IntentKind = "navigate_home"
	IntentNavigateChat IntentKind = "navigate_chat"
	IntentNavigateScan IntentKind = "navigate_scan"
	IntentStartCamera  IntentKind = "start_camera"
	IntentStopCamera   IntentKind = "stop_camera"
	IntentCapture      IntentKind = "capture_analyze"
	IntentEmergency    IntentKind = "emergency"
	IntentQuestion     IntentKind = "question"
	IntentChatMessage  IntentKind = "chat_message"
	IntentUnrecognized IntentKind = "unrecognized"
)

// Intent is the interpreted meaning of one utterance. Query carries the
// full transcript for the question and chat-message kinds.
type Intent struct {
	Kind  IntentKind
	Query string
}
