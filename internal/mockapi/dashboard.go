package mockapi

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"mindscape/internal/api"
	"mindscape/internal/journal"
)

const defaultActivityLimit = 5

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	owner := currentEmail(r.Context())

	s.mu.Lock()
	emotions := s.emotionsOfLocked(owner)
	sessions := s.sessionsOfLocked(owner)
	now := s.now()
	s.mu.Unlock()

	today := startOfDay(now)
	weekStart := today.AddDate(0, 0, -6)

	stats := api.DashboardStats{
		JournalEntries: len(emotions),
		ChatSessions:   len(sessions),
	}
	goodDays := map[string]struct{}{}
	for _, e := range emotions {
		if stats.TodayEmotion == "" && !e.Date.Before(today) {
			stats.TodayEmotion = emotionLabel(e.EmotionType)
		}
		if e.Date.Before(weekStart) {
			continue
		}
		if mood, ok := journal.LookupMood(e.EmotionType); ok && mood.Polarity == journal.Positive {
			goodDays[e.Date.Format("2006-01-02")] = struct{}{}
		}
	}
	stats.GoodDaysThisWeek = len(goodDays)

	respond(w, http.StatusOK, map[string]interface{}{"stats": stats}, "")
}

func (s *Server) handleDashboardGreeting(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	name := ""
	if acc, ok := s.accounts[currentEmail(r.Context())]; ok {
		name = acc.FullName
	}
	now := s.now()
	s.mu.Unlock()

	respond(w, http.StatusOK, map[string]string{"greetingMessage": greeting(now, name)}, "")
}

func greeting(now time.Time, name string) string {
	part := "evening"
	switch h := now.Hour(); {
	case h >= 5 && h < 12:
		part = "morning"
	case h >= 12 && h < 18:
		part = "afternoon"
	}
	if name == "" {
		return fmt.Sprintf("Good %s!", part)
	}
	return fmt.Sprintf("Good %s, %s!", part, name)
}

func (s *Server) handleDashboardActivities(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r.URL.Query().Get("limit"), defaultActivityLimit)
	owner := currentEmail(r.Context())

	type item struct {
		action string
		at     time.Time
	}

	s.mu.Lock()
	items := []item{}
	for _, e := range s.emotionsOfLocked(owner) {
		items = append(items, item{action: "Logged feeling " + emotionLabel(e.EmotionType), at: e.CreatedAt})
	}
	for _, sess := range s.sessionsOfLocked(owner) {
		if sess.LastMessageAt.IsZero() {
			items = append(items, item{action: "Started a new conversation", at: sess.CreatedAt})
			continue
		}
		items = append(items, item{action: "Chatted about \"" + sess.Title + "\"", at: sess.LastMessageAt})
	}
	now := s.now()
	s.mu.Unlock()

	sort.SliceStable(items, func(i, j int) bool { return items[i].at.After(items[j].at) })
	if len(items) > limit {
		items = items[:limit]
	}

	activities := make([]api.RecentActivity, 0, len(items))
	for _, it := range items {
		activities = append(activities, api.RecentActivity{
			Action:    it.action,
			Time:      ago(now, it.at),
			Timestamp: it.at.UTC().Format(time.RFC3339),
		})
	}
	respond(w, http.StatusOK, map[string]interface{}{"activities": activities}, "")
}

func emotionLabel(value string) string {
	if mood, ok := journal.LookupMood(value); ok {
		return mood.Label
	}
	return value
}

func ago(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	default:
		return plural(int(d.Hours()/24), "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
