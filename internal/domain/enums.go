package domain

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Valid reports whether s is a known sender.
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderAssistant
}

// Mood ratings are integers on a closed 1-10 scale.
const (
	MinMoodRating = 1
	MaxMoodRating = 10
)

// ValidMoodRating reports whether r is on the mood scale.
func ValidMoodRating(r int) bool {
	return r >= MinMoodRating && r <= MaxMoodRating
}
