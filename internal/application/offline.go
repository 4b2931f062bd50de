package application

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// offlineDescriptions are the canned scene descriptions used when the
// analysis service stays unreachable after all retries.
var offlineDescriptions = []string{
	"I can see an indoor space with furniture around you. The path directly ahead appears clear, but move carefully.",
	"There appears to be a doorway ahead of you with open floor space leading up to it. No obstacles detected nearby.",
	"I can see a room with a table and chairs to one side. Keep to your current path to avoid them.",
	"The area in front of you looks like a hallway. The floor seems clear, though lighting is limited.",
	"I can see an open space with a wall to your right. There may be objects at floor level, so proceed slowly.",
}

// offlineDisclaimer names the user's question so they know the answer did
// not come from the analysis service.
const offlineDisclaimer = " Please note: I could not reach the analysis service, so this is a general description and not an answer to your question \"%s\"."

// OfflineResponder fabricates a scene description when the image analysis
// endpoint is unreachable. Only the image path uses it; chat failures never
// get a synthetic answer.
type OfflineResponder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewOfflineResponder() *OfflineResponder {
	return &OfflineResponder{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Describe picks one of the canned descriptions uniformly. When question is
// non-empty the disclaimer naming that exact question is appended.
func (o *OfflineResponder) Describe(question string) string {
	o.mu.Lock()
	text := offlineDescriptions[o.rng.Intn(len(offlineDescriptions))]
	o.mu.Unlock()
	if question != "" {
		text += fmt.Sprintf(offlineDisclaimer, question)
	}
	return text
}

// Descriptions returns a copy of the canned description set.
func Descriptions() []string {
	out := make([]string, len(offlineDescriptions))
	copy(out, offlineDescriptions)
	return out
}
