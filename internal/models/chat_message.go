package models

import "time"

type ChatSender string

const (
	SenderUser      ChatSender = "user"
	SenderAssistant ChatSender = "assistant"
)

type ChatMessage struct {
	ID             uint `gorm:"primaryKey"`
	UserID         uint `gorm:"index;not null"`
	User           User
	ConversationID string     `gorm:"size:36;index;not null"`
	Sender         ChatSender `gorm:"size:20;not null"`
	Text           string     `gorm:"type:text;not null"`
	CreatedAt      time.Time
}
