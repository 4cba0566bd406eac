package core

import (
	"strings"
	"time"
)

const (
	AppName    = "IdeaPartner"
	AppVersion = "0.1.0"
	UserAgent  = "IdeaPartner-Bot/0.1"
)

type Category string

const (
	CategoryBusiness     Category = "Business"
	CategoryProductivity Category = "Productivity"
	CategorySelfDev      Category = "Self-Dev"
	CategoryOffTopic     Category = "Off-topic"
	CategoryFinance      Category = "Finance"
	CategoryGeneral      Category = "General"
)

// IsOffTopic reports whether turns of this category stay out of stored history.
func (c Category) IsOffTopic() bool {
	return strings.EqualFold(strings.TrimSpace(string(c)), string(CategoryOffTopic))
}

// Turn is one user input plus the reply it received. It is built after the reply
// was delivered and never changes afterwards.
type Turn struct {
	UserID    string
	Input     string
	Reply     string
	Category  Category
	Timestamp time.Time
}

type EventKind string

const (
	EventText  EventKind = "text"
	EventImage EventKind = "image"
)

// Event is a platform-neutral inbound message.
type Event struct {
	Kind      EventKind
	UserID    string
	Text      string
	MessageID string
}

// Image is a fetched binary attachment.
type Image struct {
	Data     []byte
	MIMEType string
}
