package application_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"vision-voice/internal/application"
	"vision-voice/internal/domain"
)

type fakeCamera struct {
	mu       sync.Mutex
	active   bool
	startErr error
	frame    domain.CapturedFrame
	captures int
	stops    int
}

func (f *fakeCamera) Start(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.active = true
	return nil
}

func (f *fakeCamera) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.active = false
	return nil
}

func (f *fakeCamera) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *fakeCamera) Capture(_ context.Context) (domain.CapturedFrame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.active {
		return domain.CapturedFrame{}, application.ErrCameraInactive
	}
	f.captures++
	return f.frame, nil
}

type fakeHaptics struct {
	mu       sync.Mutex
	vibrates int
}

func (f *fakeHaptics) Vibrate(_ context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vibrates++
}

func newScanFixture(svc application.AnalysisService, cam *fakeCamera) (*application.ScanController, *fakeSpeech, *fakeNotifier, *fakeHaptics) {
	speech := &fakeSpeech{}
	notifier := &fakeNotifier{}
	haptics := &fakeHaptics{}
	c := application.NewScanController(cam, newTestPipeline(svc), speech, notifier, haptics, true, discardLogger())
	return c, speech, notifier, haptics
}

func TestScanController_StartCamera(t *testing.T) {
	cam := &fakeCamera{}
	c, speech, notifier, haptics := newScanFixture(&fakeAnalysisService{analysis: "x"}, cam)

	err := c.Handle(context.Background(), domain.Intent{Kind: domain.IntentStartCamera})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if !cam.Active() {
		t.Error("camera should be active")
	}
	if haptics.vibrates != 1 {
		t.Errorf("vibrations: got %d, want 1", haptics.vibrates)
	}
	if len(notifier.notices) != 1 || notifier.notices[0] != "Camera started" {
		t.Errorf("notices: got %v", notifier.notices)
	}
	if len(speech.all()) == 0 {
		t.Error("start confirmation should be spoken")
	}
}

func TestScanController_StartCameraUnavailable(t *testing.T) {
	cam := &fakeCamera{startErr: application.ErrCameraUnavailable}
	c, speech, notifier, _ := newScanFixture(&fakeAnalysisService{analysis: "x"}, cam)

	err := c.Handle(context.Background(), domain.Intent{Kind: domain.IntentStartCamera})
	if err == nil {
		t.Fatal("Handle should fail when the camera is unavailable")
	}

	if cam.Active() {
		t.Error("camera must not be active after a failed start")
	}
	if len(notifier.notices) != 1 || notifier.notices[0] != "Camera unavailable" {
		t.Errorf("notices: got %v", notifier.notices)
	}

	spokenUnavailable := false
	for _, s := range speech.all() {
		if strings.Contains(strings.ToLower(s), "unavailable") {
			spokenUnavailable = true
		}
	}
	if !spokenUnavailable {
		t.Error("camera unavailability should be spoken aloud")
	}
}

// Stopping an already-stopped camera does nothing: no error, no stop call,
// no notification.
func TestScanController_StopCameraIdempotent(t *testing.T) {
	cam := &fakeCamera{}
	c, _, notifier, _ := newScanFixture(&fakeAnalysisService{analysis: "x"}, cam)

	if err := c.Handle(context.Background(), domain.Intent{Kind: domain.IntentStopCamera}); err != nil {
		t.Fatalf("stop on inactive camera: %v", err)
	}
	if cam.stops != 0 {
		t.Errorf("stop calls: got %d, want 0", cam.stops)
	}
	if len(notifier.notices) != 0 {
		t.Errorf("notices: got %v, want none", notifier.notices)
	}
}

// Capture while inactive fails before the pipeline runs: no encode, no
// service call, no retry state touched.
func TestScanController_AnalyzeRequiresActiveCamera(t *testing.T) {
	svc := &fakeAnalysisService{analysis: "x"}
	cam := &fakeCamera{}
	c, speech, notifier, _ := newScanFixture(svc, cam)

	err := c.Analyze(context.Background(), "")
	if !errors.Is(err, application.ErrCameraInactive) {
		t.Fatalf("error: got %v, want ErrCameraInactive", err)
	}

	calls, _ := svc.counts()
	if calls != 0 {
		t.Errorf("service calls: got %d, want 0", calls)
	}
	if len(notifier.notices) != 1 || notifier.notices[0] != "Camera is not active" {
		t.Errorf("notices: got %v", notifier.notices)
	}

	spokenInactive := false
	for _, s := range speech.all() {
		if strings.Contains(strings.ToLower(s), "not active") {
			spokenInactive = true
		}
	}
	if !spokenInactive {
		t.Error("inactive camera should be spoken aloud")
	}
}

func TestScanController_AnalyzeStoresAndSpeaksResult(t *testing.T) {
	svc := &fakeAnalysisService{analysis: "a sunny street with no obstacles"}
	cam := &fakeCamera{active: true, frame: testFrame()}
	c, speech, notifier, _ := newScanFixture(svc, cam)

	if err := c.Handle(context.Background(), domain.Intent{Kind: domain.IntentCapture}); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	result := c.LastResult()
	if result.Text != "a sunny street with no obstacles" {
		t.Errorf("last result: got %q", result.Text)
	}
	if result.Offline {
		t.Error("result should not be offline")
	}

	spokenResult := false
	for _, s := range speech.all() {
		if s == result.Text {
			spokenResult = true
		}
	}
	if !spokenResult {
		t.Error("result should be spoken when voice feedback is on")
	}

	if len(notifier.notices) != 1 || notifier.notices[0] != "Analysis complete" {
		t.Errorf("notices: got %v", notifier.notices)
	}
	if c.Processing() {
		t.Error("processing flag stuck after settle")
	}
}

func TestScanController_QuestionTravelsToResult(t *testing.T) {
	svc := &fakeAnalysisService{analysis: "the door is open"}
	cam := &fakeCamera{active: true, frame: testFrame()}
	c, _, _, _ := newScanFixture(svc, cam)

	intent := domain.Intent{Kind: domain.IntentQuestion, Query: "is the door open"}
	if err := c.Handle(context.Background(), intent); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	result := c.LastResult()
	if result.Question != "is the door open" {
		t.Errorf("question: got %q", result.Question)
	}
}

func TestScanController_OfflineFallbackNotifies(t *testing.T) {
	svc := &fakeAnalysisService{failures: -1}
	cam := &fakeCamera{active: true, frame: testFrame()}
	c, _, notifier, _ := newScanFixture(svc, cam)

	if err := c.Handle(context.Background(), domain.Intent{Kind: domain.IntentCapture}); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if !c.LastResult().Offline {
		t.Error("result should be marked offline")
	}

	offlineNotice := false
	for _, n := range notifier.notices {
		if strings.Contains(n, "offline") {
			offlineNotice = true
		}
	}
	if !offlineNotice {
		t.Errorf("expected an offline notice, got %v", notifier.notices)
	}
}
