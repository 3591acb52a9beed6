package model

import "time"

// MaxMessageLength bounds message content after trimming.
const MaxMessageLength = 1000

type Message struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uint64    `gorm:"column:conversation_id;index" json:"conversationId"`
	SenderID       uint64    `gorm:"column:sender_id;index" json:"senderId"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	IsRead         bool      `gorm:"column:is_read;not null;default:false" json:"isRead"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (Message) TableName() string {
	return "messages"
}
