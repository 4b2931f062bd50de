package application

import (
	"strings"

	"vision-voice/internal/domain"
)

// rule pairs a predicate with the intent it produces. Rules are evaluated in
// slice order and the first match wins, so overlapping phrases are resolved
// by position, not specificity. That ordering is part of the contract and is
// locked by tests.
type rule struct {
	kind    domain.IntentKind
	phrases []string
}

func (r rule) matches(transcript string) bool {
	for _, p := range r.phrases {
		if strings.Contains(transcript, p) {
			return true
		}
	}
	return false
}

var scanRules = []rule{
	{domain.IntentNavigateHome, []string{"go back", "go home"}},
	{domain.IntentNavigateChat, []string{"go to gpt", "go to assistant"}},
	{domain.IntentStartCamera, []string{"start camera", "open camera"}},
	{domain.IntentStopCamera, []string{"stop camera", "close camera"}},
	{domain.IntentCapture, []string{"take picture", "take a picture", "snap photo", "analyze"}},
	{domain.IntentEmergency, []string{"emergency"}},
}

var chatRules = []rule{
	{domain.IntentNavigateHome, []string{"go back", "go home"}},
	{domain.IntentNavigateScan, []string{"go to scan", "video analyzer"}},
	{domain.IntentEmergency, []string{"emergency"}},
}

// Interpret maps one utterance to an intent. It is a pure function of the
// lowercased transcript, the page it was heard on, and whether the camera is
// active. Unmatched speech becomes a free-form question when the scan page
// camera is live, a chat message on the chat page, and unrecognized
// otherwise (the scan controller answers that with a help hint).
func Interpret(page domain.Page, transcript string, cameraActive bool) domain.Intent {
	transcript = strings.ToLower(strings.TrimSpace(transcript))

	rules := scanRules
	if page == domain.PageChat {
		rules = chatRules
	}

	for _, r := range rules {
		if r.matches(transcript) {
			return domain.Intent{Kind: r.kind}
		}
	}

	switch {
	case page == domain.PageChat:
		return domain.Intent{Kind: domain.IntentChatMessage, Query: transcript}
	case cameraActive:
		return domain.Intent{Kind: domain.IntentQuestion, Query: transcript}
	default:
		return domain.Intent{Kind: domain.IntentUnrecognized, Query: transcript}
	}
}
