// Package journal maps logged emotions into journal entries and computes the
// filters and summaries shown next to them.
package journal

import "strings"

// Polarity groups moods for trend summaries
type Polarity string

const (
	Positive Polarity = "positive"
	Neutral  Polarity = "neutral"
	Negative Polarity = "negative"
)

// Mood is one selectable emotion
type Mood struct {
	Value    string
	Label    string
	Emoji    string
	Polarity Polarity
}

// Intensity is one of the five intensity levels
type Intensity struct {
	Level int
	Label string
}

const (
	MinIntensity = 1
	MaxIntensity = 5
)

// Moods is the fixed emotion catalog in display order
var Moods = []Mood{
	{Value: "happy", Label: "Happy", Emoji: "😊", Polarity: Positive},
	{Value: "sad", Label: "Sad", Emoji: "😔", Polarity: Negative},
	{Value: "anxious", Label: "Anxious", Emoji: "😰", Polarity: Negative},
	{Value: "angry", Label: "Angry", Emoji: "😠", Polarity: Negative},
	{Value: "tired", Label: "Tired", Emoji: "😴", Polarity: Neutral},
	{Value: "calm", Label: "Calm", Emoji: "😌", Polarity: Positive},
	{Value: "loved", Label: "Loved", Emoji: "😍", Polarity: Positive},
	{Value: "confused", Label: "Confused", Emoji: "😕", Polarity: Neutral},
}

// Intensities lists the levels from very mild to very strong
var Intensities = []Intensity{
	{Level: 1, Label: "Very mild"},
	{Level: 2, Label: "Mild"},
	{Level: 3, Label: "Moderate"},
	{Level: 4, Label: "Strong"},
	{Level: 5, Label: "Very strong"},
}

// DefaultTags are offered when logging an emotion
var DefaultTags = []string{"Work", "Family", "Study", "Health", "Relationships", "Finance", "Social"}

// LookupMood finds a mood by value or label, case-insensitively
func LookupMood(name string) (Mood, bool) {
	name = strings.TrimSpace(name)
	for _, m := range Moods {
		if strings.EqualFold(m.Value, name) || strings.EqualFold(m.Label, name) {
			return m, true
		}
	}
	return Mood{}, false
}

// IntensityLabel returns the label of level, or "" when out of range
func IntensityLabel(level int) string {
	for _, in := range Intensities {
		if in.Level == level {
			return in.Label
		}
	}
	return ""
}

// IntensityBar draws level as five dots, clamped to 0..5
func IntensityBar(level int) string {
	if level < 0 {
		level = 0
	}
	if level > MaxIntensity {
		level = MaxIntensity
	}
	return strings.Repeat("●", level) + strings.Repeat("○", MaxIntensity-level)
}
