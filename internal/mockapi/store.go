package mockapi

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"mindscape/internal/api"
)

type account struct {
	FullName string
	Email    string
	Avatar   string
	Password string
}

func (a *account) user() api.User {
	return api.User{FullName: a.FullName, Email: a.Email, Avatar: a.Avatar}
}

// grant is an issued access token
type grant struct {
	email   string
	expires time.Time
}

type session struct {
	api.ChatSession
	owner    string
	seq      int
	messages []api.ConversationMessage
}

// emotion is a logged emotion in the shape the API returns
type emotion struct {
	ID          string    `json:"id"`
	EmotionType string    `json:"emotionType"`
	Emoji       string    `json:"emoji"`
	Intensity   int       `json:"intensity"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
	owner       string
}

// grantAccessLocked issues a new access token (must be called with lock held)
func (s *Server) grantAccessLocked(email string) string {
	token := uuid.New().String()
	s.access[token] = grant{email: email, expires: s.now().Add(s.accessTTL)}
	return token
}

// signIn issues access and refresh cookies for email
func (s *Server) signIn(w http.ResponseWriter, email string) {
	s.mu.Lock()
	access := s.grantAccessLocked(email)
	refresh := uuid.New().String()
	s.refresh[refresh] = email
	s.mu.Unlock()

	http.SetCookie(w, sessionCookie(cookieAccess, access))
	http.SetCookie(w, sessionCookie(cookieRefresh, refresh))
}

// ExpireAccessTokens invalidates every access token so the next request
// goes through the refresh path
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, g := range s.access {
		g.expires = s.now().Add(-time.Second)
		s.access[token] = g
	}
}

// SignupOTP returns the pending sign-up code for email
func (s *Server) SignupOTP(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.signupOTPs[strings.ToLower(email)]
	return code, ok
}

// sessionsOfLocked lists the owner's sessions most recent first (must be
// called with lock held)
func (s *Server) sessionsOfLocked(owner string) []api.ChatSession {
	owned := []*session{}
	for _, sess := range s.sessions {
		if sess.owner == owner {
			owned = append(owned, sess)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		ai, aj := recency(owned[i].ChatSession), recency(owned[j].ChatSession)
		if ai.Equal(aj) {
			return owned[i].seq > owned[j].seq
		}
		return ai.After(aj)
	})
	out := make([]api.ChatSession, 0, len(owned))
	for _, sess := range owned {
		out = append(out, sess.ChatSession)
	}
	return out
}

func recency(s api.ChatSession) time.Time {
	if !s.LastMessageAt.IsZero() {
		return s.LastMessageAt
	}
	return s.CreatedAt
}

// emotionsOfLocked lists the owner's emotions newest first, later entries
// first on equal dates (must be called with lock held)
func (s *Server) emotionsOfLocked(owner string) []*emotion {
	out := []*emotion{}
	for i := len(s.emotions) - 1; i >= 0; i-- {
		if e := s.emotions[i]; e.owner == owner {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}
