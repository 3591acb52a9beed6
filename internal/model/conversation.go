package model

import (
	"fmt"
	"time"
)

// Conversation holds exactly two participants, stored sorted so that the
// pair key is deterministic regardless of who opened the chat.
type Conversation struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserLowID     uint64    `gorm:"column:user_low_id;index" json:"-"`
	UserHighID    uint64    `gorm:"column:user_high_id;index" json:"-"`
	PairKey       string    `gorm:"column:pair_key;size:64;uniqueIndex" json:"-"`
	ProductID     *uint64   `gorm:"column:product_id;index" json:"productId"`
	LastMessageID *uint64   `gorm:"column:last_message_id" json:"lastMessageId"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime;index" json:"updatedAt"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// HasParticipant reports whether uid is one of the two participants.
func (c *Conversation) HasParticipant(uid uint64) bool {
	return uid == c.UserLowID || uid == c.UserHighID
}

// ParticipantIDs returns both participant ids in stored (sorted) order.
func (c *Conversation) ParticipantIDs() [2]uint64 {
	return [2]uint64{c.UserLowID, c.UserHighID}
}

// NormalizePair orders a user pair ascending.
func NormalizePair(a, b uint64) (low, high uint64) {
	if a > b {
		return b, a
	}
	return a, b
}

// PairKeyFor derives the canonical pair key for two user ids. The unique
// index on this column is what makes one-conversation-per-pair hold under
// concurrent creation.
func PairKeyFor(a, b uint64) string {
	low, high := NormalizePair(a, b)
	return fmt.Sprintf("%d:%d", low, high)
}
