package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"rental-pricing-ai/chat"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is handled at the middleware level
	},
}

// wsMessage is one frame sent to a websocket chat client
type wsMessage struct {
	Type           string `json:"type"` // "chunk", "done", or "error"
	Content        string `json:"content,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// handleChat runs one chat turn and returns the full reply
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		writeError(w, http.StatusServiceUnavailable, "chat is not enabled")
		return
	}

	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.chat.Chat(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleChatWS upgrades to a websocket and streams replies chunk by
// chunk. Each client frame is one chat turn; the connection carries the
// conversation across turns.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		writeError(w, http.StatusServiceUnavailable, "chat is not enabled")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("⚠️  WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var req chat.Request
		if err := conn.ReadJSON(&req); err != nil {
			return // client closed or sent garbage
		}

		resp, err := s.chat.ChatStream(r.Context(), req, func(chunk string) error {
			return conn.WriteJSON(wsMessage{Type: "chunk", Content: chunk})
		})
		if err != nil {
			conn.WriteJSON(wsMessage{Type: "error", Content: err.Error()})
			continue
		}

		if err := conn.WriteJSON(wsMessage{Type: "done", ConversationID: resp.ConversationID}); err != nil {
			return
		}
	}
}

// handleResetChat deletes a conversation's history
func (s *Server) handleResetChat(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		writeError(w, http.StatusServiceUnavailable, "chat is not enabled")
		return
	}

	conversationID := r.PathValue("id")
	if conversationID == "" {
		writeError(w, http.StatusBadRequest, "conversation id is required")
		return
	}

	if err := s.chat.Reset(r.Context(), conversationID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
