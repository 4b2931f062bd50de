package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"vision-voice/internal/domain"
)

// Bridge hosts the websocket endpoint a browser front-end connects to and
// exposes the browser's native capabilities (speech recognition, synthesis,
// camera, vibration, routing) behind the application interfaces. One
// browser session at a time; a new connection replaces the old one.
type Bridge struct {
	addr      string
	authToken string
	lang      string
	logger    *slog.Logger

	mux         *http.ServeMux
	server      *http.Server
	upgrader    websocket.Upgrader
	rateLimiter *RateLimiter

	onPage func(domain.Page)

	mu        sync.Mutex
	conn      *websocket.Conn
	sessionID string
	running   bool
	closeOnce sync.Once

	partial map[int]string
	pending map[string]chan event

	listening    bool
	recErr       error
	speaking     bool
	cameraActive bool

	utterances chan string
	recDown    chan error
	connected  chan struct{}
}

// NewBridge builds the bridge server. lang is the recognition locale passed
// along with every listen command; the engine locale is fixed per process.
func NewBridge(addr, authToken, lang string, logger *slog.Logger) *Bridge {
	b := &Bridge{
		addr:        addr,
		authToken:   authToken,
		lang:        lang,
		logger:      logger,
		mux:         http.NewServeMux(),
		rateLimiter: NewRateLimiter(60, time.Minute),
		partial:     make(map[int]string),
		pending:     make(map[string]chan event),
		utterances:  make(chan string, 10),
		recDown:     make(chan error, 1),
		connected:   make(chan struct{}, 1),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 4 * 1024,
			// The front-end is served from a different origin in dev.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	b.mux.HandleFunc("GET /ws", b.rateLimiter.Middleware(b.handleWS))
	b.mux.HandleFunc("POST /text", b.rateLimiter.Middleware(b.handleText))
	b.mux.HandleFunc("GET /health", b.handleHealth)
	return b
}

// OnPage registers the callback told about router page changes. Set before
// Start.
func (b *Bridge) OnPage(fn func(domain.Page)) {
	b.onPage = fn
}

func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return nil
	}

	b.server = &http.Server{
		Addr:         b.addr,
		Handler:      b.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		b.logger.Info("bridge server starting", "addr", b.addr)
		if err := b.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			b.logger.Error("bridge server error", "error", err)
		}
	}()

	b.running = true
	return nil
}

func (b *Bridge) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return nil
	}

	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}

	if b.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := b.server.Shutdown(ctx); err != nil {
			b.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			if err := b.server.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	b.closeOnce.Do(func() { close(b.utterances) })
	b.running = false
	return nil
}

// Handler exposes the mux for tests.
func (b *Bridge) Handler() http.Handler {
	return b.mux
}

func (b *Bridge) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok"}`)
}

func (b *Bridge) authorized(r *http.Request) bool {
	if b.authToken == "" {
		return true
	}
	if r.Header.Get("X-Auth-Token") == b.authToken {
		return true
	}
	return r.URL.Query().Get("token") == b.authToken
}

func (b *Bridge) handleWS(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Error("websocket upgrade", "error", err)
		return
	}

	sessionID := uuid.NewString()

	b.mu.Lock()
	if b.conn != nil {
		b.logger.Info("replacing browser session", "old", b.sessionID, "new", sessionID)
		b.conn.Close()
	}
	b.conn = conn
	b.sessionID = sessionID
	b.resetSessionLocked(fmt.Errorf("browser session replaced"))
	b.mu.Unlock()

	select {
	case b.connected <- struct{}{}:
	default:
	}

	b.logger.Info("browser connected", "session", sessionID)
	go b.readPump(conn, sessionID)
}

// AwaitSession blocks until a browser session is connected. The assistant
// is started per session; when a session drops it is awaited again.
func (b *Bridge) AwaitSession(ctx context.Context) error {
	for {
		b.mu.Lock()
		ready := b.conn != nil
		b.mu.Unlock()
		if ready {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.connected:
		}
	}
}

// handleText lets users who cannot speak type a command; it enters the same
// utterance queue as recognized speech.
func (b *Bridge) handleText(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, 4*1024))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	text := string(data)
	if text == "" {
		http.Error(w, "empty text", http.StatusBadRequest)
		return
	}

	select {
	case b.utterances <- text:
		b.logger.Info("received typed command", "text", text)
		w.WriteHeader(http.StatusAccepted)
		fmt.Fprintf(w, `{"status":"received"}`)
	default:
		http.Error(w, "queue full, try again", http.StatusServiceUnavailable)
	}
}

func (b *Bridge) readPump(conn *websocket.Conn, sessionID string) {
	defer func() {
		b.mu.Lock()
		if b.conn == conn {
			b.conn = nil
			b.resetSessionLocked(fmt.Errorf("browser disconnected"))
		}
		b.mu.Unlock()
		conn.Close()
		b.logger.Info("browser disconnected", "session", sessionID)
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				b.logger.Error("reading from browser", "error", err)
			}
			return
		}

		var ev event
		if err := json.Unmarshal(msg, &ev); err != nil {
			b.logger.Warn("malformed event from browser", "error", err)
			continue
		}

		b.dispatch(ev)
	}
}

func (b *Bridge) dispatch(ev event) {
	switch ev.Type {
	case evTranscript:
		b.handleTranscript(ev)

	case evSpeech:
		b.mu.Lock()
		switch ev.State {
		case stateListening:
			b.listening = true
			b.recErr = nil
		case stateStopped, stateEnded:
			b.listening = false
			b.pushRecDownLocked(fmt.Errorf("speech session ended"))
		case stateError:
			b.listening = false
			b.recErr = fmt.Errorf("speech recognition: %s", ev.Error)
			b.pushRecDownLocked(b.recErr)
		}
		b.mu.Unlock()
		b.resolve(ev)

	case evTTS:
		b.mu.Lock()
		b.speaking = ev.State == stateStarted
		b.mu.Unlock()

	case evCamera:
		b.mu.Lock()
		switch ev.State {
		case stateActive:
			b.cameraActive = true
		case stateInactive, stateError:
			b.cameraActive = false
		}
		b.mu.Unlock()
		b.resolve(ev)

	case evFrame:
		b.resolve(ev)

	case evPage:
		if b.onPage != nil {
			b.onPage(domain.Page(ev.Page))
		}

	default:
		b.logger.Warn("unknown event type from browser", "type", ev.Type)
	}
}

// handleTranscript keeps only the newest segment per result index; the
// current utterance is replaced, never concatenated. A final result is
// queued for NextUtterance and the partial state dropped.
func (b *Bridge) handleTranscript(ev event) {
	b.mu.Lock()
	b.partial[ev.Index] = ev.Text
	if !ev.Final {
		b.mu.Unlock()
		return
	}
	delete(b.partial, ev.Index)
	b.mu.Unlock()

	select {
	case b.utterances <- ev.Text:
	default:
		b.logger.Warn("utterance queue full, dropping", "text", ev.Text)
	}
}

// resolve hands a reply event to the request waiting on its ID.
func (b *Bridge) resolve(ev event) {
	if ev.ID == "" {
		return
	}
	b.mu.Lock()
	ch, ok := b.pending[ev.ID]
	if ok {
		delete(b.pending, ev.ID)
	}
	b.mu.Unlock()
	if ok {
		ch <- ev
	}
}

func (b *Bridge) pushRecDownLocked(err error) {
	select {
	case b.recDown <- err:
	default:
	}
}

// resetSessionLocked clears per-connection state and fails requests still
// waiting on the old connection. Caller holds b.mu.
func (b *Bridge) resetSessionLocked(cause error) {
	b.partial = make(map[int]string)
	b.listening = false
	b.speaking = false
	b.cameraActive = false
	for id, ch := range b.pending {
		delete(b.pending, id)
		ch <- event{ID: id, State: stateError, Error: cause.Error()}
	}
}

func (b *Bridge) send(cmd command) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()

	if conn == nil {
		return errors.New("no browser session connected")
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshaling command: %w", err)
	}

	// gorilla allows one concurrent writer.
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != conn {
		return errors.New("browser session replaced")
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("writing command: %w", err)
	}
	return nil
}

// request sends a command that expects a reply event with the same ID.
func (b *Bridge) request(ctx context.Context, cmd command, timeout time.Duration) (event, error) {
	cmd.ID = uuid.NewString()
	ch := make(chan event, 1)

	b.mu.Lock()
	b.pending[cmd.ID] = ch
	b.mu.Unlock()

	if err := b.send(cmd); err != nil {
		b.mu.Lock()
		delete(b.pending, cmd.ID)
		b.mu.Unlock()
		return event{}, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ev := <-ch:
		if ev.State == stateError {
			return ev, fmt.Errorf("browser reported: %s", ev.Error)
		}
		return ev, nil
	case <-ctx.Done():
		b.mu.Lock()
		delete(b.pending, cmd.ID)
		b.mu.Unlock()
		return event{}, ctx.Err()
	case <-timer.C:
		b.mu.Lock()
		delete(b.pending, cmd.ID)
		b.mu.Unlock()
		return event{}, fmt.Errorf("browser did not answer %s within %s", cmd.Cmd, timeout)
	}
}
