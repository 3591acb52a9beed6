package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/tiendalibre/marketplace-backend/internal/model"
	"github.com/tiendalibre/marketplace-backend/internal/repository"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Pagination describes one page of a message listing.
type Pagination struct {
	Total int64
	Page  int
	Pages int
}

type MessageService interface {
	List(ctx context.Context, convID, userID uint64, page, pageSize int) ([]MessageView, *Pagination, error)
	Send(ctx context.Context, convID, senderID uint64, content string) (*MessageView, error)
	MarkRead(ctx context.Context, convID, userID uint64) error
	UnreadCount(ctx context.Context, convID, userID uint64) (int64, error)
}

type messageService struct {
	convRepo repository.ConversationRepository
	users    repository.UserDirectory
}

func NewMessageService(convRepo repository.ConversationRepository, users repository.UserDirectory) MessageService {
	return &messageService{convRepo: convRepo, users: users}
}

func (s *messageService) requireParticipant(ctx context.Context, convID, userID uint64) (*model.Conversation, error) {
	cv, err := s.convRepo.FindByID(ctx, convID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !cv.HasParticipant(userID) {
		return nil, ErrForbidden
	}
	return cv, nil
}

// List pages by recency (the newest messages are on page 1) but returns each
// page oldest-first, so it reads top to bottom as a conversation.
func (s *messageService) List(ctx context.Context, convID, userID uint64, page, pageSize int) ([]MessageView, *Pagination, error) {
	cv, err := s.requireParticipant(ctx, convID, userID)
	if err != nil {
		return nil, nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	msgs, total, err := s.convRepo.ListMessages(ctx, convID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	ids := cv.ParticipantIDs()
	users, err := s.users.LookupUsers(ctx, ids[:])
	if err != nil {
		return nil, nil, err
	}
	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		var sender *model.User
		if u, ok := users[m.SenderID]; ok {
			sender = &u
		}
		views = append(views, MessageView{Message: m, Sender: sender})
	}

	pages := 0
	if total > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return views, &Pagination{Total: total, Page: page, Pages: pages}, nil
}

func (s *messageService) Send(ctx context.Context, convID, senderID uint64, content string) (*MessageView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	// Reject over-long content instead of truncating; silent data loss
	// would be worse than a retryable error.
	if utf8.RuneCountInString(content) > model.MaxMessageLength {
		return nil, ErrContentTooLong
	}

	if _, err := s.requireParticipant(ctx, convID, senderID); err != nil {
		return nil, err
	}

	msg := &model.Message{
		ConversationID: convID,
		SenderID:       senderID,
		Content:        content,
	}
	if err := s.convRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	sender, err := s.users.LookupUser(ctx, senderID)
	if err != nil {
		return nil, err
	}
	return &MessageView{Message: *msg, Sender: sender}, nil
}

func (s *messageService) MarkRead(ctx context.Context, convID, userID uint64) error {
	if _, err := s.requireParticipant(ctx, convID, userID); err != nil {
		return err
	}
	return s.convRepo.MarkRead(ctx, convID, userID)
}

func (s *messageService) UnreadCount(ctx context.Context, convID, userID uint64) (int64, error) {
	if _, err := s.requireParticipant(ctx, convID, userID); err != nil {
		return 0, err
	}
	return s.convRepo.CountUnread(ctx, convID, userID)
}
