package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"slidedeck/internal/deck"
	"slidedeck/internal/logging"
	"slidedeck/internal/navigator"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait   = 10 * time.Second
	sendBacklog = 16
)

// clientMessage is one navigation request. Key is a browser key name and is
// used when Action is empty.
type clientMessage struct {
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
	Index  *int   `json:"index,omitempty"`
	Key    string `json:"key,omitempty"`
}

// reply is what the server sends back. State accompanies warnings and
// errors so clients can resync.
type reply struct {
	Session string           `json:"session,omitempty"`
	State   *navigator.State `json:"state,omitempty"`
	Warning string           `json:"warning,omitempty"`
	Error   string           `json:"error,omitempty"`
	Reload  bool             `json:"reload,omitempty"`
}

// session is one WebSocket connection with its own navigator.
type session struct {
	id   string
	conn *websocket.Conn
	nav  *navigator.Navigator
	send chan reply
	done chan struct{}
}

// notify queues a message without blocking; a client too slow to drain its
// backlog misses it.
func (sess *session) notify(msg reply) {
	select {
	case sess.send <- msg:
	default:
		logging.ServerWarn("session %s: dropped message, backlog full", sess.id)
	}
}

func (sess *session) writeLoop() {
	defer close(sess.done)
	for msg := range sess.send {
		_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sess.conn.WriteJSON(msg); err != nil {
			logging.ServerDebug("session %s: write failed: %v", sess.id, err)
			_ = sess.conn.Close()
			for range sess.send {
			}
			return
		}
	}
	_ = sess.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

// handleWebSocket runs one navigation session.
// GET /ws
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.ServerWarn("websocket upgrade failed: %v", err)
		return
	}

	sess := s.openSession(conn)
	if sess == nil {
		_ = conn.Close()
		return
	}
	defer s.closeSession(sess)

	go sess.writeLoop()
	state := sess.nav.State()
	sess.notify(reply{Session: sess.id, State: &state})

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.ServerDebug("session %s: read failed: %v", sess.id, err)
			}
			return
		}
		sess.notify(handleMessage(sess.nav, msg))
	}
}

// handleMessage applies one request. A missing slide is a warning and the
// session carries on.
func handleMessage(nav *navigator.Navigator, msg clientMessage) reply {
	action := navigator.Action(msg.Action)
	if action == "" && msg.Key != "" {
		a, ok := navigator.ActionForKey(msg.Key)
		if !ok {
			return reply{Error: "no action bound to key " + strconv.Quote(msg.Key)}
		}
		action = a
	}

	arg := msg.ID
	if action == navigator.ActionGoto && msg.Index != nil {
		arg = strconv.Itoa(*msg.Index)
	}

	state, err := nav.Apply(action, arg)
	switch {
	case err == nil:
		return reply{State: &state}
	case errors.Is(err, deck.ErrSlideNotFound):
		logging.ServerWarn("%v", err)
		return reply{Warning: err.Error(), State: &state}
	default:
		return reply{Error: err.Error(), State: &state}
	}
}

func (s *Server) openSession(conn *websocket.Conn) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	sess := &session{
		id:   uuid.NewString(),
		conn: conn,
		nav:  navigator.New(s.deck),
		send: make(chan reply, sendBacklog),
		done: make(chan struct{}),
	}
	s.sessions[sess.id] = sess
	s.wg.Add(1)
	logging.Server("session %s opened (%d active)", sess.id, len(s.sessions))
	return sess
}

func (s *Server) closeSession(sess *session) {
	s.mu.Lock()
	_, tracked := s.sessions[sess.id]
	delete(s.sessions, sess.id)
	remaining := len(s.sessions)
	s.mu.Unlock()

	if tracked {
		close(sess.send)
	}
	<-sess.done
	_ = sess.conn.Close()
	s.wg.Done()
	logging.Server("session %s closed (%d active)", sess.id, remaining)
}

// closeSessions closes every connection; their handlers see a read error
// and clean up.
func (s *Server) closeSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, sess := range s.sessions {
		_ = sess.conn.Close()
	}
}
