package state

import (
	"time"

	"mindscape/internal/api"
)

// ChatRoute is the route of the chat page; a session id may follow it
const ChatRoute = "/dashboard/chat"

// State is everything the CLI remembers between runs
type State struct {
	// BaseURL is the API the saved login belongs to
	BaseURL       string    `json:"base_url,omitempty"`
	User          *api.User `json:"user,omitempty"`
	Cookies       []Cookie  `json:"cookies,omitempty"`
	LastSessionID string    `json:"last_session_id,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Cookie is a saved session cookie
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
