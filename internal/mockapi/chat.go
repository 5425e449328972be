package mockapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mindscape/internal/api"
	"mindscape/internal/logging"
)

const newSessionTitle = "New conversation"

type sendMessageBody struct {
	Message   string `json:"message" validate:"required"`
	SessionID string `json:"sessionId" validate:"required"`
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	sessions := s.sessionsOfLocked(currentEmail(r.Context()))
	s.mu.Unlock()

	respond(w, http.StatusOK, map[string]interface{}{"sessions": sessions}, "")
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	sess := &session{
		ChatSession: api.ChatSession{
			ID:        uuid.New().String(),
			Title:     newSessionTitle,
			CreatedAt: now,
			UpdatedAt: now,
		},
		owner:    currentEmail(r.Context()),
		messages: []api.ConversationMessage{},
	}

	s.mu.Lock()
	sess.seq = len(s.sessions) + 1
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	logger := logging.Ctx(r.Context())
	logger.Debug().Str(logging.FieldSessionID, sess.ID).Msg("session created")
	respond(w, http.StatusCreated, sess.ChatSession, "Chat session created")
}

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok || sess.owner != currentEmail(r.Context()) {
		s.mu.Unlock()
		respondError(w, http.StatusNotFound, "Chat session not found")
		return
	}
	msgs := make([]api.ConversationMessage, len(sess.messages))
	copy(msgs, sess.messages)
	s.mu.Unlock()

	respond(w, http.StatusOK, map[string]interface{}{"messages": msgs}, "")
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var body sendMessageBody
	if !s.decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	sess, ok := s.sessions[body.SessionID]
	if !ok || sess.owner != currentEmail(r.Context()) {
		s.mu.Unlock()
		respondError(w, http.StatusNotFound, "Chat session not found")
		return
	}

	now := s.now()
	sentiment := sentimentOf(body.Message)
	score := sentiment.Score
	userMsg := api.ConversationMessage{
		ID:             uuid.New().String(),
		Message:        body.Message,
		IsFromUser:     true,
		Sentiment:      sentiment.Sentiment,
		SentimentScore: &score,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	aiMsg := api.ConversationMessage{
		ID:         uuid.New().String(),
		Message:    scriptedReply(body.Message),
		IsFromUser: false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if len(sess.messages) == 0 && sess.Title == newSessionTitle {
		sess.Title = titleFrom(body.Message)
	}
	sess.messages = append(sess.messages, userMsg, aiMsg)
	sess.LastMessageAt = now
	sess.UpdatedAt = now
	s.mu.Unlock()

	respond(w, http.StatusOK, api.SendMessageResult{
		UserMessage: userMsg,
		AIMessage:   aiMsg,
		Sentiment:   sentiment,
	}, "Message sent")
}
