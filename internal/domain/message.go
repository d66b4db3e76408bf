package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	SystemUserID   UserID = "system"
	SystemUsername        = "System"
	SystemColor           = "#6b7280"
)

// Message is one delivery of a chat message to one connection. The same
// logical message keeps its ID across every recipient copy; content and the
// translation fields vary per recipient.
type Message struct {
	ID             string    `json:"id"`
	Content        string    `json:"content"`
	UserID         UserID    `json:"userId"`
	Username       string    `json:"username"`
	Timestamp      time.Time `json:"timestamp"`
	MoodColor      string    `json:"moodColor"`
	Anonymous      bool      `json:"isAnonymous"`
	System         bool      `json:"isSystem,omitempty"`
	Original       bool      `json:"isOriginal"`
	Translated     bool      `json:"translated"`
	SourceLanguage string    `json:"sourceLanguage,omitempty"`
	TargetLanguage string    `json:"targetLanguage,omitempty"`
}

// NewSystemMessage avoids ad-hoc struct literals in handlers.
func NewSystemMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Content:   content,
		UserID:    SystemUserID,
		Username:  SystemUsername,
		Timestamp: time.Now().UTC(),
		MoodColor: SystemColor,
		System:    true,
		Original:  true,
	}
}
