package chat

// Notice is a transient user-facing notification
type Notice struct {
	Title  string
	Detail string
}

// Notifier surfaces notices to the user
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Notice)

// Notify calls f(n)
func (f NotifierFunc) Notify(n Notice) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(Notice) {}

// Generic texts used when the server gives no detail.
const (
	TitleSessionsFailed = "Could not load conversations"
	TitleCreateFailed   = "Could not start a conversation"
	TitleHistoryFailed  = "Could not load messages"
	TitleSendFailed     = "Message not sent"

	FallbackSessions = "Your conversations could not be loaded. Please try again."
	FallbackCreate   = "A new conversation could not be started. Please try again."
	FallbackHistory  = "This conversation could not be loaded. Please try again."
	FallbackSend     = "Your message could not be sent. Please try again."
)
