package httpapi

import (
	"net/http"
	"strings"
	"sync"

	"github.com/dwizi/concierge/internal/sanitize"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type socketFrame struct {
	Text string `json:"text"`
}

func (r *router) upgrader() websocket.Upgrader {
	allowed := r.deps.Config.WSAllowedOrigins()
	return websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(req *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			origin := strings.TrimSpace(req.Header.Get("Origin"))
			for _, candidate := range allowed {
				if strings.EqualFold(origin, candidate) {
					return true
				}
			}
			return false
		},
	}
}

// handleChatSocket resolves every inbound frame on its own goroutine, so a
// frame sent while the session is still resolving gets the busy notice.
func (r *router) handleChatSocket(w http.ResponseWriter, req *http.Request) {
	if r.deps.Sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "chat is unavailable")
		return
	}
	upgrader := r.upgrader()
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.deps.Logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxBodyBytes)

	sessionID := strings.TrimSpace(req.URL.Query().Get("session_id"))
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	logger := r.deps.Logger.With("component", "chat-socket", "session_id", sessionID)
	logger.Info("chat socket opened")

	var (
		writeMu sync.Mutex
		pending sync.WaitGroup
	)
	write := func(payload any) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(payload); err != nil {
			logger.Warn("chat socket write failed", "error", err)
		}
	}

	ctx := req.Context()
	for {
		var frame socketFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("chat socket read failed", "error", err)
			}
			break
		}
		text := sanitize.Text(frame.Text)
		if text == "" {
			write(map[string]string{"session_id": sessionID, "error": "text is required"})
			continue
		}
		pending.Add(1)
		go func() {
			defer pending.Done()
			_, outcome := r.deps.Sessions.Submit(ctx, sessionID, text)
			write(chatResponse{
				SessionID: sessionID,
				Reply:     outcome.Reply,
				Source:    string(outcome.Source),
			})
		}()
	}
	pending.Wait()
	logger.Info("chat socket closed")
}
