package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/sitechat/widget-ai-platform/pkg/logging"
)

// WSHandler serves the widget's real-time channel. Each connection is one
// visitor; replies are produced synchronously and pushed back on the same
// socket.
type WSHandler struct {
	chat    ChatService
	tracker StartTracker
	logger  *logging.Logger
}

func NewWSHandler(chatSvc ChatService, tracker StartTracker, logger *logging.Logger) *WSHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WSHandler{chat: chatSvc, tracker: tracker, logger: logger}
}

type wsInbound struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text,omitempty"`
}

type wsOutbound struct {
	Type      string `json:"type"` // "session", "message", "typing", "pong", "error"
	Text      string `json:"text,omitempty"`
	Role      string `json:"role,omitempty"`
	VisitorID string `json:"visitorId,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ServeHTTP upgrades to WebSocket and runs the message loop.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serve(conn, r)
	}).ServeHTTP(w, r)
}

func (h *WSHandler) serve(conn *websocket.Conn, r *http.Request) {
	tenantID := r.URL.Query().Get("tenant")
	if tenantID == "" {
		_ = websocket.JSON.Send(conn, wsOutbound{Type: "error", Text: "missing tenant parameter"})
		return
	}
	visitorID := r.URL.Query().Get("visitor")
	if visitorID == "" {
		visitorID = uuid.NewString()
	}

	_ = websocket.JSON.Send(conn, wsOutbound{Type: "session", VisitorID: visitorID})

	greeting, err := h.chat.StartChat(r.Context(), tenantID, visitorID)
	if err != nil {
		_ = websocket.JSON.Send(conn, wsOutbound{Type: "error", Text: "unknown tenant"})
		return
	}
	h.send(conn, greeting.Message, greeting.Timestamp)

	if h.tracker != nil {
		h.tracker.SubmitStart(tenantID, visitorID, trimPort(r.RemoteAddr))
	}

	h.logger.Info("widget socket opened", "tenant_id", tenantID, "visitor_id", visitorID)

	for {
		var msg wsInbound
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("widget socket closed", "tenant_id", tenantID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, wsOutbound{Type: "pong"})
			continue
		}
		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		_ = websocket.JSON.Send(conn, wsOutbound{Type: "typing"})

		reply, err := h.chat.SendMessage(r.Context(), tenantID, visitorID, msg.Text)
		if err != nil {
			h.logger.Error("widget socket message failed", "tenant_id", tenantID, "error", err)
			_ = websocket.JSON.Send(conn, wsOutbound{Type: "error", Text: "Sorry, something went wrong. Please try again."})
			continue
		}
		h.send(conn, reply.Message, reply.Timestamp)
	}
}

func (h *WSHandler) send(conn *websocket.Conn, text string, ts time.Time) {
	_ = websocket.JSON.Send(conn, wsOutbound{
		Type:      "message",
		Role:      "assistant",
		Text:      text,
		Timestamp: ts.Format(time.RFC3339),
	})
}
