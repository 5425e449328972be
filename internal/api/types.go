package api

import (
	"encoding/json"
	"time"
)

// ChatSession is a server-side conversation thread
type ChatSession struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ConversationMessage is a persisted message as the API returns it
type ConversationMessage struct {
	ID             string    `json:"id"`
	Message        string    `json:"message"`
	IsFromUser     bool      `json:"isFromUser"`
	Sentiment      string    `json:"sentiment,omitempty"`
	SentimentScore *float64  `json:"sentimentScore,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// SentimentResult is the sentiment the API assigned to a sent message
type SentimentResult struct {
	Sentiment string  `json:"sentiment"`
	Score     float64 `json:"score"`
}

// SendMessageResult holds both halves of one exchange
type SendMessageResult struct {
	UserMessage ConversationMessage `json:"userMessage"`
	AIMessage   ConversationMessage `json:"aiMessage"`
	Sentiment   SentimentResult     `json:"sentiment"`
}

// SendMessageRequest is the body of POST /chat/message
type SendMessageRequest struct {
	Message   string `json:"message" validate:"required"`
	SessionID string `json:"sessionId" validate:"required"`
}

// User is the logged-in account
type User struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

// userData accepts both {"user": {...}} and a bare user object.
type userData struct {
	User *User
}

func (u *userData) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		User *User `json:"user"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	if wrapped.User != nil {
		u.User = wrapped.User
		return nil
	}
	var bare User
	if err := json.Unmarshal(data, &bare); err != nil {
		return err
	}
	if bare.Email != "" || bare.FullName != "" {
		u.User = &bare
	}
	return nil
}

// CreateEmotionPayload is the body of POST /emotions
type CreateEmotionPayload struct {
	Emotion     string   `json:"emotion" validate:"required"`
	Intensity   int      `json:"intensity" validate:"min=1,max=5"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Emoji       string   `json:"emoji,omitempty"`
}

// EmotionQuery filters GET /emotions
type EmotionQuery struct {
	Page        int
	Limit       int
	StartDate   string
	EndDate     string
	EmotionType string
}

// EmotionRecord is a logged emotion. The backend has shipped several field
// names over time, so alternates are kept and resolved by the journal package.
type EmotionRecord struct {
	ID           string     `json:"id"`
	MongoID      string     `json:"_id"`
	EmotionType  string     `json:"emotionType"`
	Emotion      string     `json:"emotion"`
	Emoji        string     `json:"emoji"`
	Intensity    *int       `json:"intensity"`
	MoodRating   *int       `json:"moodRating"`
	Description  string     `json:"description"`
	JournalEntry string     `json:"journalEntry"`
	Tags         []string   `json:"tags"`
	Date         *time.Time `json:"date"`
	CreatedAt    *time.Time `json:"createdAt"`
}

// Pagination describes a page of a listing
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// EmotionList is the data of GET /emotions
type EmotionList struct {
	Emotions   []EmotionRecord `json:"emotions"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

// Trend periods accepted by GET /analytics/trends
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// EmotionStat is one emotion's share within a trend period
type EmotionStat struct {
	Emotion    string  `json:"emotion"`
	Emoji      string  `json:"emoji"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Trend      float64 `json:"trend"`
}

// DailyMood counts entries per polarity for one day
type DailyMood struct {
	Date     string `json:"date"`
	Positive int    `json:"positive"`
	Neutral  int    `json:"neutral"`
	Negative int    `json:"negative"`
}

// Trends is the data of GET /analytics/trends
type Trends struct {
	Period   string        `json:"period"`
	Emotions []EmotionStat `json:"emotions"`
	Daily    []DailyMood   `json:"daily"`
}

// DashboardStats summarises the user's activity
type DashboardStats struct {
	TodayEmotion     string `json:"todayEmotion"`
	JournalEntries   int    `json:"journalEntries"`
	GoodDaysThisWeek int    `json:"goodDaysThisWeek"`
	ChatSessions     int    `json:"chatSessions"`
}

// RecentActivity is one line of the activity feed
type RecentActivity struct {
	Action    string `json:"action"`
	Time      string `json:"time"`
	Timestamp string `json:"timestamp"`
}

// DashboardOverview bundles the three dashboard calls
type DashboardOverview struct {
	Stats      DashboardStats
	Greeting   string
	Activities []RecentActivity
}

// SupportResource is an article, technique or resource card
type SupportResource struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Duration    string `json:"duration,omitempty"`
	Category    string `json:"category,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
}

// PersonalizedResources is the data of GET /resources
type PersonalizedResources struct {
	Articles   []SupportResource `json:"articles"`
	Techniques []SupportResource `json:"techniques"`
	Resources  []SupportResource `json:"resources"`
}

// RelaxVideo is a relaxation video
type RelaxVideo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
}

// RelaxVideos is the data of GET /relax/videos
type RelaxVideos struct {
	Message string       `json:"message"`
	Videos  []RelaxVideo `json:"videos"`
}
