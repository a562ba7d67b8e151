package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/mindwell/mindwell-api/internal/middleware"
	"github.com/mindwell/mindwell-api/internal/models"
	"github.com/mindwell/mindwell-api/internal/services/chat"
	"github.com/mindwell/mindwell-api/internal/validation"
)

// ChatHandler handles companion chat requests over REST and WebSocket
type ChatHandler struct {
	responder *chat.Responder
	upgrader  websocket.Upgrader
}

// NewChatHandler creates a new chat handler
func NewChatHandler(responder *chat.Responder) *ChatHandler {
	return &ChatHandler{
		responder: responder,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser origin checks are enforced by the CORS layer.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes registers chat routes
func (h *ChatHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/chat", h.SendMessage).Methods("POST")
	r.HandleFunc("/users/{user_id}/history", h.GetHistory).Methods("GET")
	r.HandleFunc("/users/{user_id}/history", h.ClearHistory).Methods("DELETE")
}

// RegisterWebSocket registers the WebSocket chat route. The caller mounts it
// under /ws.
func (h *ChatHandler) RegisterWebSocket(r *mux.Router) {
	r.HandleFunc("/chat/{user_id}", h.ChatSocket)
}

// SendMessage runs one chat turn and returns the reply with mood metadata.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	req.Message = validation.SanitizeText(req.Message)
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	// The user_id here comes from the body, not the route, so the auth
	// middleware cannot bind it. Enforce the same rule ourselves.
	if sub := middleware.SubjectFromContext(r); sub != "" && sub != req.UserID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Token subject does not match user")
		return
	}

	reply, err := h.responder.Respond(r.Context(), req.UserID, req.Message)
	if err != nil {
		log.Printf("Chat turn failed for user %s: %v", req.UserID, err)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to process message")
		return
	}

	respondJSON(w, http.StatusOK, reply)
}

// GetHistory returns the newest conversation messages, oldest first.
func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	limit := parseIntQuery(r, "limit", 50)
	msgs, err := h.responder.History(r.Context(), userID, limit)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user_id":  userID,
		"messages": msgs,
		"count":    len(msgs),
	})
}

// ClearHistory wipes the stored conversation but keeps profile and stats.
func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	if err := h.responder.ClearHistory(r.Context(), userID); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to clear history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"cleared": true,
	})
}

// socketFrame is one client message on the chat socket.
type socketFrame struct {
	Message string `json:"message"`
}

// ChatSocket runs chat turns over a WebSocket. Each inbound text frame is one
// user message; each reply frame carries the same payload as the REST
// endpoint.
func (h *ChatHandler) ChatSocket(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	if userID == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "user_id is required")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(64 * 1024)

	for {
		var frame socketFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error for user %s: %v", userID, err)
			}
			return
		}

		message := validation.SanitizeText(frame.Message)
		if message == "" {
			if err := conn.WriteJSON(map[string]any{
				"success": false,
				"error":   "message is required",
			}); err != nil {
				return
			}
			continue
		}

		reply, err := h.responder.Respond(r.Context(), userID, message)
		if err != nil {
			log.Printf("Chat turn failed for user %s: %v", userID, err)
			if err := conn.WriteJSON(map[string]any{
				"success": false,
				"error":   "failed to process message",
			}); err != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(map[string]any{
			"success":   true,
			"data":      reply,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			return
		}
	}
}
