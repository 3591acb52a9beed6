package repository

import (
	"context"
	"errors"
	"time"

	"github.com/tiendalibre/marketplace-backend/internal/model"
	"gorm.io/gorm"
)

var (
	ErrDBNotReady       = errors.New("database not initialized")
	ErrSameParticipants = errors.New("conversation requires two distinct participants")
)

type ConversationRepository interface {
	Create(ctx context.Context, userA, userB uint64, productID *uint64) (*model.Conversation, error)
	FindByPair(ctx context.Context, userA, userB uint64) (*model.Conversation, error)
	FindByID(ctx context.Context, id uint64) (*model.Conversation, error)
	FindByUser(ctx context.Context, userID uint64) ([]model.Conversation, error)
	Delete(ctx context.Context, id uint64) error
	CreateMessage(ctx context.Context, msg *model.Message) error
	ListMessages(ctx context.Context, convID uint64, limit, offset int) ([]model.Message, int64, error)
	CountUnread(ctx context.Context, convID, readerID uint64) (int64, error)
	MarkRead(ctx context.Context, convID, readerID uint64) error
	SetDB(db *gorm.DB)
}

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) SetDB(db *gorm.DB) {
	r.db = db
}

func (r *conversationRepository) Create(ctx context.Context, userA, userB uint64, productID *uint64) (*model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	if userA == userB {
		return nil, ErrSameParticipants
	}
	low, high := model.NormalizePair(userA, userB)
	cv := model.Conversation{
		UserLowID:  low,
		UserHighID: high,
		PairKey:    model.PairKeyFor(userA, userB),
		ProductID:  productID,
	}
	if err := r.db.WithContext(ctx).Create(&cv).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) FindByPair(ctx context.Context, userA, userB uint64) (*model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var cv model.Conversation
	if err := r.db.WithContext(ctx).
		Where("pair_key = ?", model.PairKeyFor(userA, userB)).
		First(&cv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) FindByID(ctx context.Context, id uint64) (*model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var cv model.Conversation
	if err := r.db.WithContext(ctx).First(&cv, id).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) FindByUser(ctx context.Context, userID uint64) ([]model.Conversation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Conversation
	if err := r.db.WithContext(ctx).
		Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Order("updated_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Delete removes a conversation and all of its messages in one transaction.
func (r *conversationRepository) Delete(ctx context.Context, id uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Conversation{}, id).Error
	})
}

// CreateMessage inserts the message and moves the parent conversation's
// last-message pointer in the same transaction, so the pointer can never
// reference a message that failed to commit.
func (r *conversationRepository) CreateMessage(ctx context.Context, msg *model.Message) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&model.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Updates(map[string]interface{}{
				"last_message_id": msg.ID,
				"updated_at":      time.Now(),
			}).Error
	})
}

// ListMessages pages newest-first; callers reverse the page when they need
// chronological order.
func (r *conversationRepository) ListMessages(ctx context.Context, convID uint64, limit, offset int) ([]model.Message, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("conversation_id = ?", convID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var msgs []model.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&msgs).Error; err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

func (r *conversationRepository) CountUnread(ctx context.Context, convID, readerID uint64) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", convID, readerID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead flips every unread message from the other participant; running it
// with nothing unread is a no-op.
func (r *conversationRepository) MarkRead(ctx context.Context, convID, readerID uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Model(&model.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", convID, readerID, false).
		Update("is_read", true).Error
}
