package web

import (
	"net/http"

	"github.com/NegoBotEngine/NegoBot/internal/configs"
	"github.com/NegoBotEngine/NegoBot/internal/nlog"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := configs.GetServerConfig().CORSOrigin
		return origin == "*" || origin == r.Header.Get("Origin")
	},
}

type wsFrame struct {
	Delta string `json:"delta,omitempty"`
	Reply string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
}

// chatSocket runs negotiation turns over a websocket. Each text frame from
// the client is one user input; the server pushes delta frames as the model
// streams and a final reply frame per turn. Closing the socket mid-turn
// cancels the request context, which ends the stream with partial text.
func (s *Server) chatSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	if _, err := s.store.Get(sessionID); err != nil {
		s.writeStoreError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		nlog.Warn("Web", "error", "websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	nlog.Info("Web", "info", "websocket chat opened", "sessionId", sessionID)

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			nlog.Debug("Web", "info", "websocket closed", "sessionId", sessionID, "err", err)
			return
		}
		if msgType != websocket.TextMessage || len(payload) == 0 {
			continue
		}

		onDelta := func(delta string) {
			if err := conn.WriteJSON(wsFrame{Delta: delta}); err != nil {
				nlog.Debug("Web", "info", "websocket write failed mid-stream", "err", err)
			}
		}

		reply, err := s.bot.SendMessageStream(r.Context(), sessionID, string(payload), onDelta)
		if err != nil {
			if writeErr := conn.WriteJSON(wsFrame{Error: err.Error()}); writeErr != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(wsFrame{Reply: reply}); err != nil {
			return
		}
	}
}
