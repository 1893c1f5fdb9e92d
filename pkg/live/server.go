package live

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"cdr.dev/slog"
	"github.com/gorilla/websocket"

	"github.com/recera/netviz/pkg/debug"
	"github.com/recera/netviz/pkg/netgraph"
)

// Source provides the items of diagram id.
type Source interface {
	Items(id int) ([]netgraph.Info, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(id int) ([]netgraph.Info, error)

func (f SourceFunc) Items(id int) ([]netgraph.Info, error) { return f(id) }

// Server publishes diagrams to viewers over websockets.
type Server struct {
	ctx      context.Context
	upgrader websocket.Upgrader
	source   Source
	sessions map[*Session]struct{}
	mu       sync.RWMutex

	// PingInterval is how often idle connections are pinged.
	PingInterval time.Duration
}

// Session is one connected viewer.
type Session struct {
	DiagramID int
	conn      *websocket.Conn
	sendChan  chan []byte
	closeChan chan struct{}
	closeOnce sync.Once
}

// NewServer creates a publisher for source. ctx carries the logger and
// bounds the lifetime of every session.
func NewServer(ctx context.Context, source Source) *Server {
	return &Server{
		ctx: debug.Named(ctx, "live.server"),
		upgrader: websocket.Upgrader{
			// Viewers are local tools; any origin may connect.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		source:       source,
		sessions:     make(map[*Session]struct{}),
		PingInterval: 54 * time.Second,
	}
}

// Handler returns a mux serving the diagram route.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(Path, s.HandleWebSocket)
	return mux
}

// HandleWebSocket upgrades a viewer connection and streams its diagram.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "numeric diagram id required", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		debug.Warn(s.ctx, "failed to upgrade connection", slog.Error(err))
		return
	}

	session := &Session{
		DiagramID: id,
		conn:      conn,
		sendChan:  make(chan []byte, 256),
		closeChan: make(chan struct{}),
	}
	s.mu.Lock()
	s.sessions[session] = struct{}{}
	s.mu.Unlock()

	debug.Info(s.ctx, "viewer connected", slog.F("diagram", id), slog.F("remote", r.RemoteAddr))
	go s.handleConnection(session)
}

// Sessions returns the number of connected viewers.
func (s *Server) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Broadcast resends every diagram to its viewers, e.g. after the source changed.
// Items with known uids replace the viewer's copies.
func (s *Server) Broadcast() {
	s.mu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.RUnlock()

	for _, session := range sessions {
		if err := s.sendDiagram(session); err != nil {
			debug.Warn(s.ctx, "broadcast failed", slog.F("diagram", session.DiagramID), slog.Error(err))
		}
	}
}

// Close disconnects every viewer.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for session := range s.sessions {
		session.close()
		delete(s.sessions, session)
	}
}

func (s *Server) remove(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, session)
}

// handleConnection runs the writer and reads until the viewer goes away.
func (s *Server) handleConnection(session *Session) {
	defer func() {
		session.close()
		s.remove(session)
		debug.Info(s.ctx, "viewer disconnected", slog.F("diagram", session.DiagramID))
	}()

	go s.writer(session)

	if err := session.send(mustEncode(ConnMessage())); err != nil {
		return
	}
	if err := s.sendDiagram(session); err != nil {
		debug.Warn(s.ctx, "failed to send diagram", slog.F("diagram", session.DiagramID), slog.Error(err))
	}

	readTimeout := 2 * s.pingInterval()
	session.conn.SetReadDeadline(time.Now().Add(readTimeout))
	session.conn.SetPongHandler(func(string) error {
		session.conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	// Viewers send nothing yet; reading keeps control frames flowing.
	for {
		messageType, data, err := session.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				debug.Warn(s.ctx, "unexpected close", slog.Error(err))
			}
			return
		}
		debug.Debug(s.ctx, "ignoring viewer message", slog.F("type", messageType), slog.F("size", len(data)))
	}
}

// writer owns all data writes to the connection.
func (s *Server) writer(session *Session) {
	ticker := time.NewTicker(s.pingInterval())
	defer ticker.Stop()

	for {
		select {
		case message := <-session.sendChan:
			session.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := session.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				debug.Warn(s.ctx, "failed to write message", slog.Error(err))
				session.close()
				return
			}

		case <-ticker.C:
			session.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := session.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				session.close()
				return
			}

		case <-session.closeChan:
			return
		case <-s.ctx.Done():
			session.close()
			return
		}
	}
}

func (s *Server) pingInterval() time.Duration {
	if s.PingInterval <= 0 {
		return 54 * time.Second
	}
	return s.PingInterval
}

func (s *Server) sendDiagram(session *Session) error {
	items, err := s.source.Items(session.DiagramID)
	if err != nil {
		return err
	}
	for _, info := range items {
		data, err := EncodeMessage(CreateMessage(info))
		if err != nil {
			return fmt.Errorf("encode %s: %w", info.UID, err)
		}
		if err := session.send(data); err != nil {
			return err
		}
	}
	debug.Debug(s.ctx, "diagram sent", slog.F("diagram", session.DiagramID), slog.F("items", len(items)))
	return nil
}

func (session *Session) send(data []byte) error {
	select {
	case <-session.closeChan:
		return fmt.Errorf("session closed")
	default:
	}
	select {
	case session.sendChan <- data:
		return nil
	case <-session.closeChan:
		return fmt.Errorf("session closed")
	}
}

func (session *Session) close() {
	session.closeOnce.Do(func() {
		close(session.closeChan)
		session.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		session.conn.Close()
	})
}

func mustEncode(m Message) []byte {
	data, err := EncodeMessage(m)
	if err != nil {
		panic(err)
	}
	return data
}
