package mockapi

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"mindscape/internal/api"
	"mindscape/internal/journal"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

type createEmotionBody struct {
	Emotion     string   `json:"emotion" validate:"required"`
	Intensity   int      `json:"intensity" validate:"min=1,max=5"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Emoji       string   `json:"emoji"`
}

func (s *Server) handleCreateEmotion(w http.ResponseWriter, r *http.Request) {
	var body createEmotionBody
	if !s.decode(w, r, &body) {
		return
	}

	emoji := body.Emoji
	emotionType := body.Emotion
	if mood, ok := journal.LookupMood(body.Emotion); ok {
		emotionType = mood.Value
		if emoji == "" {
			emoji = mood.Emoji
		}
	}
	tags := body.Tags
	if tags == nil {
		tags = []string{}
	}

	now := s.now()
	e := &emotion{
		ID:          uuid.New().String(),
		EmotionType: emotionType,
		Emoji:       emoji,
		Intensity:   body.Intensity,
		Description: body.Description,
		Tags:        tags,
		Date:        now,
		CreatedAt:   now,
		owner:       currentEmail(r.Context()),
	}

	s.mu.Lock()
	s.emotions = append(s.emotions, e)
	s.mu.Unlock()

	respond(w, http.StatusCreated, e, "Emotion logged")
}

func (s *Server) handleListEmotions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := intParam(q.Get("page"), defaultPage)
	limit := intParam(q.Get("limit"), defaultLimit)
	if limit > maxLimit {
		limit = maxLimit
	}
	emotionType := q.Get("emotionType")
	start, startOK := dateParam(q.Get("startDate"))
	end, endOK := dateParam(q.Get("endDate"))

	s.mu.Lock()
	all := s.emotionsOfLocked(currentEmail(r.Context()))
	matched := make([]emotion, 0, len(all))
	for _, e := range all {
		if emotionType != "" && e.EmotionType != emotionType {
			continue
		}
		if startOK && e.Date.Before(start) {
			continue
		}
		if endOK && !e.Date.Before(end.AddDate(0, 0, 1)) {
			continue
		}
		matched = append(matched, *e)
	}
	s.mu.Unlock()

	total := len(matched)
	from := (page - 1) * limit
	if from > total {
		from = total
	}
	to := from + limit
	if to > total {
		to = total
	}

	respond(w, http.StatusOK, map[string]interface{}{
		"emotions": matched[from:to],
		"pagination": api.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	}, "")
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = api.PeriodWeek
	}

	var days int
	switch period {
	case api.PeriodWeek:
		days = 7
	case api.PeriodMonth:
		days = 30
	case api.PeriodYear:
		days = 365
	default:
		respondError(w, http.StatusBadRequest, "period must be week, month or year")
		return
	}

	s.mu.Lock()
	all := s.emotionsOfLocked(currentEmail(r.Context()))
	now := s.now()
	s.mu.Unlock()

	respond(w, http.StatusOK, computeTrends(all, period, days, now), "")
}

// computeTrends counts emotions in the last days, compares each count with
// the window before and buckets them per day (per month for a year)
func computeTrends(all []*emotion, period string, days int, now time.Time) api.Trends {
	today := startOfDay(now)
	from := today.AddDate(0, 0, -(days - 1))
	prevFrom := from.AddDate(0, 0, -days)

	current := map[string]int{}
	previous := map[string]int{}
	total := 0
	for _, e := range all {
		switch {
		case !e.Date.Before(from):
			current[e.EmotionType]++
			total++
		case !e.Date.Before(prevFrom):
			previous[e.EmotionType]++
		}
	}

	trends := api.Trends{Period: period, Emotions: []api.EmotionStat{}, Daily: []api.DailyMood{}}
	for _, mood := range journal.Moods {
		count := current[mood.Value]
		if count == 0 {
			continue
		}
		trends.Emotions = append(trends.Emotions, api.EmotionStat{
			Emotion:    mood.Label,
			Emoji:      mood.Emoji,
			Count:      count,
			Percentage: round1(float64(count) * 100 / float64(total)),
			Trend:      change(previous[mood.Value], count),
		})
	}

	if period == api.PeriodYear {
		trends.Daily = monthlyBuckets(all, today)
	} else {
		trends.Daily = dailyBuckets(all, from, days, period)
	}
	return trends
}

func dailyBuckets(all []*emotion, from time.Time, days int, period string) []api.DailyMood {
	out := make([]api.DailyMood, days)
	for i := range out {
		day := from.AddDate(0, 0, i)
		label := day.Format("Jan 2")
		if period == api.PeriodWeek {
			label = day.Format("Mon")
		}
		out[i].Date = label
	}
	for _, e := range all {
		if e.Date.Before(from) {
			continue
		}
		i := int(math.Round(startOfDay(e.Date.In(from.Location())).Sub(from).Hours() / 24))
		if i >= 0 && i < days {
			addPolarity(&out[i], e.EmotionType)
		}
	}
	return out
}

func monthlyBuckets(all []*emotion, today time.Time) []api.DailyMood {
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()).AddDate(0, -11, 0)
	out := make([]api.DailyMood, 12)
	for i := range out {
		out[i].Date = first.AddDate(0, i, 0).Format("Jan")
	}
	for _, e := range all {
		d := e.Date.In(today.Location())
		i := (d.Year()-first.Year())*12 + int(d.Month()) - int(first.Month())
		if i >= 0 && i < 12 {
			addPolarity(&out[i], e.EmotionType)
		}
	}
	return out
}

func addPolarity(d *api.DailyMood, emotionType string) {
	mood, ok := journal.LookupMood(emotionType)
	if !ok {
		d.Neutral++
		return
	}
	switch mood.Polarity {
	case journal.Positive:
		d.Positive++
	case journal.Negative:
		d.Negative++
	default:
		d.Neutral++
	}
}

// change is the percentage change from prev to cur, 100 for a new emotion
func change(prev, cur int) float64 {
	if prev == 0 {
		if cur == 0 {
			return 0
		}
		return 100
	}
	return round1(float64(cur-prev) * 100 / float64(prev))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func intParam(v string, def int) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func dateParam(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	return time.Time{}, false
}
