package mockapi

import (
	"strings"

	"mindscape/internal/api"
)

// replyRule picks a scripted reply when any keyword appears in a message
type replyRule struct {
	keywords []string
	reply    string
}

var replyRules = []replyRule{
	{
		keywords: []string{"sad", "down", "lonely", "cry", "buồn"},
		reply: "I'm sorry you're feeling down. It's okay to feel sad sometimes. " +
			"Would you like to talk about what's on your mind? Writing a few lines in your journal can also help.",
	},
	{
		keywords: []string{"anxious", "anxiety", "worried", "nervous", "stress", "lo lắng"},
		reply: "It sounds like you're carrying a lot of worry. Let's try a quick exercise: " +
			"breathe in for **4** seconds, hold for **7**, and breathe out for **8**. Repeat it three times.",
	},
	{
		keywords: []string{"angry", "mad", "furious", "annoyed", "tức giận"},
		reply: "Anger is a natural reaction. Try stepping away for a moment and taking a few slow breaths. " +
			"What happened that made you feel this way?",
	},
	{
		keywords: []string{"tired", "exhausted", "sleepy", "burned out", "mệt"},
		reply: "You sound exhausted. Rest matters. Could you take a short break, drink some water, " +
			"or plan an earlier night today?",
	},
	{
		keywords: []string{"happy", "great", "good", "excited", "grateful", "vui"},
		reply: "That's wonderful to hear! What made today feel good? " +
			"Noting positive moments helps you come back to them later.",
	},
}

const defaultReply = "Thank you for sharing. I'm here to listen. Tell me more about how you're feeling."

// scriptedReply returns the reply of the first matching rule
func scriptedReply(message string) string {
	text := strings.ToLower(message)
	for _, rule := range replyRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.reply
			}
		}
	}
	return defaultReply
}

var (
	negativeWords = []string{"sad", "down", "lonely", "cry", "anxious", "anxiety", "worried", "nervous", "stress",
		"angry", "mad", "furious", "annoyed", "tired", "exhausted", "hate", "awful", "bad"}
	positiveWords = []string{"happy", "great", "good", "excited", "grateful", "calm", "love", "better", "thanks"}
)

// sentimentOf scores a message by counting keyword hits. Scores lie in
// [-1, 1]; ties are neutral.
func sentimentOf(message string) api.SentimentResult {
	words := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r == '\'')
	})
	pos, neg := 0, 0
	for _, w := range words {
		switch {
		case contains(positiveWords, w):
			pos++
		case contains(negativeWords, w):
			neg++
		}
	}

	total := pos + neg
	if total == 0 || pos == neg {
		return api.SentimentResult{Sentiment: "neutral", Score: 0}
	}
	score := float64(pos-neg) / float64(total)
	if score > 0 {
		return api.SentimentResult{Sentiment: "positive", Score: score}
	}
	return api.SentimentResult{Sentiment: "negative", Score: score}
}

// titleFrom derives a session title from its first message
func titleFrom(message string) string {
	title := strings.Join(strings.Fields(message), " ")
	r := []rune(title)
	if len(r) > 40 {
		title = strings.TrimSpace(string(r[:40])) + "..."
	}
	return title
}

func contains(list []string, w string) bool {
	for _, v := range list {
		if v == w {
			return true
		}
	}
	return false
}
