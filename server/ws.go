package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/FrostGod/EventDash/pkg/slogx"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

const (
	frameConnected = "connected"
	frameTyping    = "typing"
	frameMessage   = "message"
	frameError     = "error"

	wsWriteWait   = 10 * time.Second
	wsMaxReadSize = 64 << 10
)

// wsFrame is every frame the server sends on the chat socket.
type wsFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Text      string `json:"text,omitempty"`
}

// wsConn serializes writes; gorilla connections allow one concurrent writer.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(f wsFrame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteJSON(f)
}

// handleWebsocket runs a chat session. The client may resume a session with ?session_id=;
// otherwise a new id is issued in the "connected" frame. Each incoming {"text": ...} frame is
// answered with "typing" followed by "message" or "error".
const wsSessionPrefix = "ws:"

// wsSessionID keeps websocket sessions in their own namespace so a client cannot resume
// a Slack or CLI thread by naming it.
func wsSessionID(requested string) string {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return wsSessionPrefix + uuid.Must(uuid.NewV7()).String()
	}
	if strings.HasPrefix(requested, wsSessionPrefix) {
		return requested
	}
	return wsSessionPrefix + requested
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	if s.asker == nil {
		writeError(w, http.StatusServiceUnavailable, "assistant is not configured")
		return
	}

	raw, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WarnContext(r.Context(), "websocket upgrade failed", slogx.Error(err))
		return
	}
	defer raw.Close()
	raw.SetReadLimit(wsMaxReadSize)
	conn := &wsConn{conn: raw}

	sessionID := wsSessionID(r.URL.Query().Get("session_id"))
	log := s.logger.With(slog.String("session_id", sessionID))
	ctx := context.WithoutCancel(r.Context())

	if err := conn.send(wsFrame{Type: frameConnected, SessionID: sessionID}); err != nil {
		return
	}
	log.InfoContext(ctx, "websocket connected")

	for {
		_, data, err := raw.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WarnContext(ctx, "websocket read failed", slogx.Error(err))
			}
			return
		}

		text := strings.TrimSpace(gjson.GetBytes(data, "text").String())
		if !gjson.ValidBytes(data) || text == "" {
			if conn.send(wsFrame{Type: frameError, SessionID: sessionID, Text: "expected {\"text\": \"...\"}"}) != nil {
				return
			}
			continue
		}

		if conn.send(wsFrame{Type: frameTyping, SessionID: sessionID}) != nil {
			return
		}
		reply := s.chat(ctx, sessionID, text)
		if conn.send(reply) != nil {
			return
		}
	}
}

func (s *Server) chat(ctx context.Context, sessionID, text string) wsFrame {
	ctx, cancel := context.WithTimeout(ctx, s.askTimeout)
	defer cancel()

	thread, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load session", slog.String("session_id", sessionID), slogx.Error(err))
		return wsFrame{Type: frameError, SessionID: sessionID, Text: "failed to load session"}
	}
	answer, err := s.asker.Ask(ctx, thread, text)
	if err != nil {
		return wsFrame{Type: frameError, SessionID: sessionID, Text: err.Error()}
	}
	if err := s.sessions.Save(ctx, thread); err != nil {
		s.logger.WarnContext(ctx, "failed to save session", slog.String("session_id", sessionID), slogx.Error(err))
	}
	return wsFrame{Type: frameMessage, SessionID: sessionID, Text: answer}
}
