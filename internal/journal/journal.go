package journal

import (
	"math"
	"strings"
	"time"

	"mindscape/internal/api"
)

const (
	unknownEmotion = "Unknown"
	defaultEmoji   = "📝"
)

// Entry is one journal row
type Entry struct {
	ID           string
	Date         time.Time
	Emotion      string
	EmotionValue string
	Emoji        string
	Intensity    int
	Tags         []string
	Description  string
}

// FromRecord maps an API emotion record, resolving the alternate field names
func FromRecord(r api.EmotionRecord) Entry {
	e := Entry{
		ID:           firstNonEmpty(r.ID, r.MongoID),
		EmotionValue: firstNonEmpty(r.EmotionType, r.Emotion),
		Description:  firstNonEmpty(r.Description, r.JournalEntry),
		Tags:         []string{},
	}

	switch {
	case r.Date != nil:
		e.Date = *r.Date
	case r.CreatedAt != nil:
		e.Date = *r.CreatedAt
	}

	switch {
	case r.Intensity != nil:
		e.Intensity = *r.Intensity
	case r.MoodRating != nil:
		e.Intensity = *r.MoodRating
	}

	if r.Tags != nil {
		e.Tags = append(e.Tags, r.Tags...)
	}

	if mood, ok := LookupMood(e.EmotionValue); ok {
		e.Emotion = mood.Label
		e.Emoji = mood.Emoji
	} else {
		e.Emotion = firstNonEmpty(e.EmotionValue, unknownEmotion)
		e.Emoji = firstNonEmpty(r.Emoji, defaultEmoji)
	}
	return e
}

// FromRecords maps a page of records
func FromRecords(records []api.EmotionRecord) []Entry {
	out := make([]Entry, 0, len(records))
	for _, r := range records {
		out = append(out, FromRecord(r))
	}
	return out
}

// Filter selects entries. Empty fields match everything.
type Filter struct {
	// Tag must be one of the entry's tags exactly
	Tag string
	// Query must appear in the description, ignoring case
	Query string
}

// Apply returns the entries matching f in their original order
func (f Filter) Apply(entries []Entry) []Entry {
	query := strings.ToLower(f.Query)
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if f.Tag != "" && !hasTag(e.Tags, f.Tag) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(e.Description), query) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Tags returns every distinct tag in first-seen order
func Tags(entries []Entry) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, e := range entries {
		for _, t := range e.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// Summary aggregates a set of entries
type Summary struct {
	Count int
	// AverageIntensity is rounded to the nearest level; 0 when Count is 0
	AverageIntensity int
	Low              int
	High             int
}

// Summarize counts entries, low (<=2) and high (>=4) intensities and the
// rounded average
func Summarize(entries []Entry) Summary {
	s := Summary{Count: len(entries)}
	if s.Count == 0 {
		return s
	}
	sum := 0
	for _, e := range entries {
		sum += e.Intensity
		if e.Intensity <= 2 {
			s.Low++
		}
		if e.Intensity >= 4 {
			s.High++
		}
	}
	s.AverageIntensity = int(math.Round(float64(sum) / float64(s.Count)))
	return s
}

// PolarityCounts sums trend counts per polarity. Emotions outside the catalog
// are not counted.
func PolarityCounts(stats []api.EmotionStat) map[Polarity]int {
	out := map[Polarity]int{Positive: 0, Neutral: 0, Negative: 0}
	for _, st := range stats {
		mood, ok := LookupMood(st.Emotion)
		if !ok {
			continue
		}
		out[mood.Polarity] += st.Count
	}
	return out
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
