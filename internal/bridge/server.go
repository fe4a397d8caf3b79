package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/kingrea/howl/internal/agent"
	"github.com/kingrea/howl/internal/journal"
)

// ServerStatus reports runtime lifecycle states for the HTTP server.
type ServerStatus string

const (
	StatusStarting ServerStatus = "starting"
	StatusReady    ServerStatus = "ready"
	StatusDraining ServerStatus = "draining"
)

var errServerDisabled = errors.New("bridge: server disabled")

// Server wraps the HTTP listener that connects the game host to the agent.
// The agent assumes a single logical thread of control; every handler call
// into it is serialized through turnMu so each response observes every
// earlier notification.
type Server struct {
	settings Settings
	agent    *agent.Agent
	feed     *Router
	journal  *journal.Journal
	logger   Logger
	clock    func() time.Time

	turnMu sync.Mutex

	mu        sync.RWMutex
	server    *http.Server
	listener  net.Listener
	status    ServerStatus
	startTime time.Time
}

// Option customizes server construction.
type Option func(*Server)

// WithFeed publishes turn updates to the given router for status displays.
func WithFeed(feed *Router) Option {
	return func(s *Server) {
		if feed != nil {
			s.feed = feed
		}
	}
}

// WithJournal records every exchange to the given game journal.
func WithJournal(j *journal.Journal) Option {
	return func(s *Server) {
		if j != nil {
			s.journal = j
		}
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock allows tests to control timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewServer prepares a bridge server for the given agent.
func NewServer(settings Settings, a *agent.Agent, opts ...Option) *Server {
	s := &Server{
		settings: settings,
		agent:    a,
		logger:   nopLogger{},
		clock:    func() time.Time { return time.Now().UTC() },
		status:   StatusStarting,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Start binds the TCP listener and begins serving HTTP traffic.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("bridge: server is nil")
	}
	if !s.settings.Enabled {
		return errServerDisabled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("bridge: server already started")
	}
	addr := s.settings.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bridge: listen %s: %w", addr, err)
	}
	s.listener = listener
	s.startTime = s.clock()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/notify", s.handleNotify)
	mux.HandleFunc("/respond", s.handleRespond)
	server := &http.Server{
		Handler:      mux,
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  s.settings.IdleTimeout,
	}
	if ctx != nil {
		server.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.server = server
	s.status = StatusReady
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("bridge: serve error: %v", err)
		}
	}()
	s.logger.Printf("bridge: listening on %s", listener.Addr().String())
	return nil
}

// Shutdown stops accepting new connections and waits for in-flight requests to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil || s.server == nil {
		return nil
	}
	s.status = StatusDraining
	deadline := ctx
	if deadline == nil {
		var cancel context.CancelFunc
		deadline, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
	}
	if err := s.server.Shutdown(deadline); err != nil {
		return err
	}
	s.listener = nil
	s.server = nil
	return nil
}

// Addr returns the bound TCP address once the server has started.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// BaseURL returns the HTTP base URL (scheme + host:port) for the running server.
func (s *Server) BaseURL() string {
	addr := s.Addr()
	if addr == "" {
		return s.settings.URL()
	}
	return "http://" + addr
}

// Status reports the server's lifecycle state.
func (s *Server) Status() ServerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Server) now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

func (s *Server) uptimeSeconds() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.startTime.IsZero() {
		return 0
	}
	return int64(time.Since(s.startTime).Seconds())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", fmt.Sprintf("%s, %s", http.MethodGet, http.MethodHead))
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	name := ""
	if s.agent != nil {
		name = s.agent.Name()
	}
	resp := healthResponse{
		Status:        string(s.Status()),
		Version:       ProtocolVersion,
		Agent:         name,
		UptimeSeconds: s.uptimeSeconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	msg, ok := s.readInbound(w, r)
	if !ok {
		return
	}
	s.turnMu.Lock()
	s.agent.Notify(r.Context(), msg.AgentMessage())
	snapshot := s.agent.Store().Snapshot()
	s.turnMu.Unlock()

	s.journal.Exchange(msg.Channel, msg.Sender, msg.Text)
	s.publish(Update{
		ID:       msg.MessageID,
		Topic:    TopicTurns,
		Kind:     KindTurn,
		Line:     fmt.Sprintf("[%s] %s: %s", msg.Channel, msg.Sender, msg.Text),
		Snapshot: &snapshot,
	})
	writeJSON(w, http.StatusAccepted, notifyResponse{Status: "accepted", ServerTime: msg.ServerTime})
}

func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request) {
	msg, ok := s.readInbound(w, r)
	if !ok {
		return
	}
	// Respond ingests the message itself; a separate Notify here would
	// record it in the transcript twice.
	s.turnMu.Lock()
	response := s.agent.Respond(r.Context(), msg.AgentMessage())
	snapshot := s.agent.Store().Snapshot()
	s.turnMu.Unlock()

	s.journal.Exchange(msg.Channel, msg.Sender, msg.Text)
	s.journal.Reply(msg.Channel, response)
	s.publish(Update{
		ID:       msg.MessageID,
		Topic:    TopicTurns,
		Kind:     KindReply,
		Line:     fmt.Sprintf("[%s] -> %s", msg.Channel, response),
		Snapshot: &snapshot,
	})
	writeJSON(w, http.StatusOK, respondResponse{Response: response, ServerTime: msg.ServerTime})
}

// readInbound decodes, normalizes, and validates one inbound message. It
// writes the error response itself and reports ok=false when the request
// cannot be handled.
func (s *Server) readInbound(w http.ResponseWriter, r *http.Request) (Inbound, bool) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return Inbound{}, false
	}
	if r.Body == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty body"})
		return Inbound{}, false
	}
	reader := http.MaxBytesReader(w, r.Body, s.settings.MaxBodyBytes)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "payload exceeds limit"})
			return Inbound{}, false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unable to read body"})
		return Inbound{}, false
	}
	var msg Inbound
	if err := json.Unmarshal(body, &msg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return Inbound{}, false
	}
	msg.Normalize()
	if err := msg.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return Inbound{}, false
	}
	msg.StampServerTime(s.now())
	return msg, true
}

func (s *Server) publish(update Update) {
	if s.feed == nil {
		return
	}
	s.feed.Route(update)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
