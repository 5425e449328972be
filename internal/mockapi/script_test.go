package mockapi

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScriptedReply(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"I feel so SAD today", "feeling down"},
		{"I'm anxious about my exam", "breathe in"},
		{"My boss made me angry", "Anger is a natural reaction"},
		{"so tired after work", "exhausted"},
		{"Today was a happy day", "wonderful"},
		{"hello there", defaultReply},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Contains(t, scriptedReply(tt.message), tt.want)
		})
	}
}

func TestSentimentOf(t *testing.T) {
	tests := []struct {
		message string
		want    string
		score   float64
	}{
		{"I feel anxious", "negative", -1},
		{"I am happy and grateful", "positive", 1},
		{"happy but tired", "neutral", 0},
		{"just a regular day", "neutral", 0},
		{"good good bad", "positive", 1.0 / 3},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			got := sentimentOf(tt.message)
			assert.Equal(t, tt.want, got.Sentiment)
			assert.InDelta(t, tt.score, got.Score, 1e-9)
		})
	}
}

func TestTitleFrom(t *testing.T) {
	assert.Equal(t, "I feel anxious", titleFrom("  I feel\nanxious "))

	long := strings.Repeat("word ", 20)
	title := titleFrom(long)
	assert.True(t, strings.HasSuffix(title, "..."))
	assert.LessOrEqual(t, len([]rune(title)), 43)
}

func TestGreeting(t *testing.T) {
	assert.Equal(t, "Good evening!", greeting(at(22), ""))
	assert.Equal(t, "Good morning, Ada!", greeting(at(8), "Ada"))
	assert.Equal(t, "Good afternoon, Ada!", greeting(at(13), "Ada"))
}
