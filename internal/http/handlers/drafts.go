package handlers

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wolfman30/coparent-mediator/internal/codelayer"
	httpmiddleware "github.com/wolfman30/coparent-mediator/internal/http/middleware"
	"github.com/wolfman30/coparent-mediator/pkg/logging"
)

const (
	draftMaxMessageBytes = 16 << 10
	draftWriteWait       = 5 * time.Second
	draftPongWait        = 60 * time.Second
)

// DraftsHandler analyzes drafts live over a websocket while the sender types.
type DraftsHandler struct {
	parser   *codelayer.Parser
	upgrader websocket.Upgrader
	logger   *logging.Logger

	mu       sync.Mutex
	sessions map[string]struct{}
}

// DraftInbound is what the client sends.
type DraftInbound struct {
	Type     string `json:"type"` // "draft" (default), "ping"
	ID       string `json:"id,omitempty"`
	Text     string `json:"text"`
	SenderID string `json:"senderId,omitempty"`
}

// DraftOutbound is what the server sends back.
type DraftOutbound struct {
	Type       string                `json:"type"` // "session", "analysis", "pong", "error"
	SessionID  string                `json:"sessionId,omitempty"`
	ID         string                `json:"id,omitempty"`
	Flagged    bool                  `json:"flagged"`
	QuickPass  *codelayer.QuickPass  `json:"quickPass,omitempty"`
	Assessment *codelayer.Assessment `json:"assessment,omitempty"`
	Axioms     []string              `json:"axioms,omitempty"`
	Error      string                `json:"error,omitempty"`
}

// NewDraftsHandler creates the handler. checkOrigin may be nil to accept any
// origin.
func NewDraftsHandler(parser *codelayer.Parser, checkOrigin func(*http.Request) bool, logger *logging.Logger) *DraftsHandler {
	if parser == nil {
		parser = codelayer.NewParser()
	}
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &DraftsHandler{
		parser: parser,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
		logger:   logging.OrDefault(logger),
		sessions: make(map[string]struct{}),
	}
}

// ActiveSessions reports the number of open draft sockets.
func (h *DraftsHandler) ActiveSessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// HandleWebSocket upgrades the request and serves drafts until the client
// disconnects.
func (h *DraftsHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("drafts: upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	claims, authed := httpmiddleware.ParticipantFromContext(r.Context())
	sessionID := uuid.NewString()
	h.mu.Lock()
	h.sessions[sessionID] = struct{}{}
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.sessions, sessionID)
		h.mu.Unlock()
	}()

	conn.SetReadLimit(draftMaxMessageBytes)
	_ = conn.SetReadDeadline(time.Now().Add(draftPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(draftPongWait))
	})

	if err := h.send(conn, DraftOutbound{Type: "session", SessionID: sessionID}); err != nil {
		return
	}
	h.logger.Info("drafts: connection opened", "session_id", sessionID)

	for {
		var msg DraftInbound
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("drafts: connection closed", "session_id", sessionID, "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(draftPongWait))
		if authed {
			msg.SenderID = claims.Subject
		}

		out := h.process(r.Context(), sessionID, msg)
		if err := h.send(conn, out); err != nil {
			h.logger.Debug("drafts: write failed", "session_id", sessionID, "error", err)
			return
		}
	}
}

func (h *DraftsHandler) process(ctx context.Context, sessionID string, msg DraftInbound) DraftOutbound {
	switch msg.Type {
	case "ping":
		return DraftOutbound{Type: "pong", SessionID: sessionID, ID: msg.ID}
	case "", "draft":
	default:
		return DraftOutbound{Type: "error", SessionID: sessionID, ID: msg.ID, Error: "unknown message type"}
	}
	if strings.TrimSpace(msg.Text) == "" {
		return DraftOutbound{Type: "error", SessionID: sessionID, ID: msg.ID, Error: "text is required"}
	}

	out := DraftOutbound{
		Type:      "analysis",
		SessionID: sessionID,
		ID:        msg.ID,
		Flagged:   codelayer.QuickCheck(msg.Text),
	}
	pm := h.parser.Parse(ctx, codelayer.Message{Text: msg.Text, SenderID: msg.SenderID}, codelayer.ParsingContext{SenderID: msg.SenderID})
	qp := codelayer.ShouldQuickPass(pm)
	out.QuickPass = &qp
	out.Assessment = &pm.Assessment
	for _, a := range pm.Axioms {
		out.Axioms = append(out.Axioms, a.ID)
	}
	return out
}

func (h *DraftsHandler) send(conn *websocket.Conn, msg DraftOutbound) error {
	_ = conn.SetWriteDeadline(time.Now().Add(draftWriteWait))
	return conn.WriteJSON(msg)
}
