package domain

import "encoding/base64"

// CapturedFrame is a compressed still image taken from the live stream at
// the moment of capture. Ephemeral: discarded once the pipeline consumes it.
type CapturedFrame struct {
	Data []byte
	MIME string
}

// Base64 returns the payload the analysis endpoint expects: raw base64 with
// no data-URL prefix.
func (f CapturedFrame) Base64() string {
	return base64.StdEncoding.EncodeToString(f.Data)
}

func (f CapturedFrame) Empty() bool {
	return len(f.Data) == 0
}

// AnalysisResult is a single free-text description, replacing any previous
// result. Question is the user's question when one produced it, empty for
// the default scene description. Offline marks a synthesized fallback.
type AnalysisResult struct {
	Text     string
	Question string
	Offline  bool
}
