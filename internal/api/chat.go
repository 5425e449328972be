package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListSessions returns the user's chat sessions in server order
func (c *Client) ListSessions(ctx context.Context) ([]ChatSession, error) {
	var data struct {
		Sessions []ChatSession `json:"sessions"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/chat/sessions", nil, nil, &data); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if data.Sessions == nil {
		data.Sessions = []ChatSession{}
	}
	return data.Sessions, nil
}

// CreateSession starts a new, empty chat session
func (c *Client) CreateSession(ctx context.Context) (ChatSession, error) {
	var session ChatSession
	if _, err := c.do(ctx, http.MethodPost, "/chat/sessions", nil, nil, &session); err != nil {
		return ChatSession{}, fmt.Errorf("create session: %w", err)
	}
	if session.ID == "" {
		return ChatSession{}, fmt.Errorf("create session: response carried no session id")
	}
	return session, nil
}

// GetConversation returns the full message history of a session
func (c *Client) GetConversation(ctx context.Context, sessionID string) ([]ConversationMessage, error) {
	var data struct {
		Messages []ConversationMessage `json:"messages"`
	}
	path := "/chat/sessions/" + url.PathEscape(sessionID) + "/messages"
	if _, err := c.do(ctx, http.MethodGet, path, nil, nil, &data); err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	if data.Messages == nil {
		data.Messages = []ConversationMessage{}
	}
	return data.Messages, nil
}

// SendMessage posts a user message and returns the stored message together
// with the assistant reply
func (c *Client) SendMessage(ctx context.Context, message, sessionID string) (*SendMessageResult, error) {
	req := SendMessageRequest{Message: message, SessionID: sessionID}
	if err := validatePayload(req); err != nil {
		return nil, err
	}

	var result SendMessageResult
	if _, err := c.do(ctx, http.MethodPost, "/chat/message", nil, req, &result); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	if result.UserMessage.ID == "" || result.AIMessage.ID == "" {
		return nil, fmt.Errorf("send message: response carried no message ids")
	}
	return &result, nil
}
