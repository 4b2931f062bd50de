package application_test

import (
	"strings"
	"testing"

	"vision-voice/internal/application"
)

func TestOfflineResponder_DescribeWithoutQuestion(t *testing.T) {
	responder := application.NewOfflineResponder()
	canned := application.Descriptions()

	for i := 0; i < 100; i++ {
		text := responder.Describe("")
		found := false
		for _, c := range canned {
			if text == c {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("description %q is not one of the canned sentences", text)
		}
	}
}

// Whatever sentence is picked, a supplied question must always appear in the
// appended disclaimer, verbatim.
func TestOfflineResponder_DisclaimerNamesQuestion(t *testing.T) {
	responder := application.NewOfflineResponder()
	canned := application.Descriptions()
	question := "is there a chair on my left"

	seen := make(map[string]bool)

	for i := 0; i < 200; i++ {
		text := responder.Describe(question)

		if !strings.Contains(text, question) {
			t.Fatalf("disclaimer does not contain the question: %q", text)
		}

		matched := ""
		for _, c := range canned {
			if strings.HasPrefix(text, c) {
				matched = c
				break
			}
		}
		if matched == "" {
			t.Fatalf("description %q does not start with a canned sentence", text)
		}
		seen[matched] = true
	}

	// 200 uniform draws over 5 sentences miss one with probability ~2e-20.
	if len(seen) != len(canned) {
		t.Errorf("expected all %d canned sentences to occur, saw %d", len(canned), len(seen))
	}
}
