package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"memecoin-creator/internal/domain"
	"memecoin-creator/internal/logging"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 16 << 10
)

// wsReply is sent for every message received on the validation socket.
// Seq echoes the client's sequence number so stale replies can be discarded.
type wsReply struct {
	Seq *int64 `json:"seq,omitempty"`
	ValidationResult
	Error string `json:"error,omitempty"`
}

// wsRequest is a TokenConfigInput with an optional sequence number.
type wsRequest struct {
	Seq *int64 `json:"seq,omitempty"`
	domain.TokenConfigInput
}

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
}

// checkOrigin allows requests without an Origin header (non-browser clients)
// and browser requests from a configured CORS origin.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	for _, allowed := range h.origins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return strings.EqualFold(u.Host, r.Host)
}

// ValidateWS handles GET /v1/tokens/validate/ws. Each text message is
// validated independently and answered with one reply, in order.
func (h *Handler) ValidateWS(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	up := h.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.metrics.WSConnections.Inc()
	defer h.metrics.WSConnections.Dec()

	conn.SetReadLimit(wsMaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	replies := make(chan wsReply, 16)

	// Single writer: replies and pings share the connection.
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case reply := <-replies:
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteJSON(reply); err != nil {
					logger.Debug("websocket write failed", zap.Error(err))
					return
				}
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var reply wsReply
		var req wsRequest
		if err := json.Unmarshal(data, &req); err != nil {
			reply.Error = "invalid message"
		} else {
			reply.Seq = req.Seq
			reply.ValidationResult = h.service.Validate(domain.ValidationSourceWebSocket, req.TokenConfigInput)
		}

		select {
		case replies <- reply:
		case <-writerDone:
			return
		}
	}
}
