package models

import "time"

type CoachRole string

const (
	CoachRoleUser      CoachRole = "USER"
	CoachRoleAssistant CoachRole = "ASSISTANT"
)

// CoachConversation groups a user's chat history with the AI coach.
type CoachConversation struct {
	ID     string `json:"id" gorm:"primaryKey;type:uuid"`
	UserID string `json:"user_id" gorm:"type:uuid;not null;index"`
	Title  string `json:"title"`

	Messages []CoachMessage `json:"messages,omitempty" gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`

	Timestamps
}

type CoachMessage struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid"`
	ConversationID string    `json:"conversation_id" gorm:"type:uuid;not null;index"`
	Role           CoachRole `json:"role" gorm:"type:varchar(12);not null"`
	Content        string    `json:"content" gorm:"type:text;not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}
