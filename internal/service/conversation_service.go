package service

import (
	"context"
	"errors"

	"github.com/tiendalibre/marketplace-backend/internal/model"
	"github.com/tiendalibre/marketplace-backend/internal/repository"
	"gorm.io/gorm"
)

// ConversationView is a conversation with its references resolved: both
// participants, the product it was opened about (if any and still active),
// the most recent message with its sender, and the viewer's unread count.
type ConversationView struct {
	Conversation model.Conversation
	Participants []model.User
	Product      *model.Product
	LastMessage  *MessageView
	UnreadCount  int64
}

// MessageView is a message with its sender resolved.
type MessageView struct {
	Message model.Message
	Sender  *model.User
}

type ConversationService interface {
	Resolve(ctx context.Context, requesterID, otherID uint64, productID *uint64) (*ConversationView, bool, error)
	List(ctx context.Context, userID uint64) ([]ConversationView, error)
	Get(ctx context.Context, convID, userID uint64) (*ConversationView, error)
	Delete(ctx context.Context, convID, userID uint64) error
}

type conversationService struct {
	convRepo repository.ConversationRepository
	users    repository.UserDirectory
	products repository.ProductDirectory
}

func NewConversationService(convRepo repository.ConversationRepository, users repository.UserDirectory, products repository.ProductDirectory) ConversationService {
	return &conversationService{convRepo: convRepo, users: users, products: products}
}

// Resolve finds the one conversation for the user pair, creating it when
// absent. The bool result is true only when a new conversation was created.
// A productID argument never overwrites the product of an existing
// conversation; the association is fixed at creation.
func (s *conversationService) Resolve(ctx context.Context, requesterID, otherID uint64, productID *uint64) (*ConversationView, bool, error) {
	if requesterID == otherID {
		return nil, false, ErrSelfConversation
	}
	other, err := s.users.LookupActiveUser(ctx, otherID)
	if err != nil {
		return nil, false, err
	}
	if other == nil {
		return nil, false, ErrInvalidParticipant
	}
	requester, err := s.users.LookupActiveUser(ctx, requesterID)
	if err != nil {
		return nil, false, err
	}
	if requester == nil {
		return nil, false, ErrInvalidParticipant
	}

	cv, err := s.convRepo.FindByPair(ctx, requesterID, otherID)
	if err != nil {
		return nil, false, err
	}
	created := false
	if cv == nil {
		cv, err = s.convRepo.Create(ctx, requesterID, otherID, productID)
		if err != nil {
			// Lost the race against a concurrent resolve for the same
			// pair: the unique pair-key index rejected the second row,
			// so the winner's conversation is there to be looked up.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				cv, err = s.convRepo.FindByPair(ctx, requesterID, otherID)
				if err != nil {
					return nil, false, err
				}
				if cv == nil {
					return nil, false, gorm.ErrDuplicatedKey
				}
			} else {
				return nil, false, err
			}
		} else {
			created = true
		}
	}

	view, err := s.buildView(ctx, cv, requesterID)
	if err != nil {
		return nil, false, err
	}
	return view, created, nil
}

func (s *conversationService) List(ctx context.Context, userID uint64) ([]ConversationView, error) {
	convs, err := s.convRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]ConversationView, 0, len(convs))
	for i := range convs {
		view, err := s.buildView(ctx, &convs[i], userID)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *conversationService) Get(ctx context.Context, convID, userID uint64) (*ConversationView, error) {
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
	return s.buildView(ctx, cv, userID)
}

func (s *conversationService) Delete(ctx context.Context, convID, userID uint64) error {
	cv, err := s.convRepo.FindByID(ctx, convID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !cv.HasParticipant(userID) {
		return ErrForbidden
	}
	return s.convRepo.Delete(ctx, convID)
}

func (s *conversationService) buildView(ctx context.Context, cv *model.Conversation, viewerID uint64) (*ConversationView, error) {
	ids := cv.ParticipantIDs()
	users, err := s.users.LookupUsers(ctx, ids[:])
	if err != nil {
		return nil, err
	}
	participants := make([]model.User, 0, 2)
	for _, id := range ids {
		if u, ok := users[id]; ok {
			participants = append(participants, u)
		}
	}

	var product *model.Product
	if cv.ProductID != nil {
		product, err = s.products.LookupProduct(ctx, *cv.ProductID)
		if err != nil {
			return nil, err
		}
	}

	var last *MessageView
	if cv.LastMessageID != nil {
		msgs, _, err := s.convRepo.ListMessages(ctx, cv.ID, 1, 0)
		if err != nil {
			return nil, err
		}
		if len(msgs) > 0 {
			m := msgs[0]
			var sender *model.User
			if u, ok := users[m.SenderID]; ok {
				sender = &u
			}
			last = &MessageView{Message: m, Sender: sender}
		}
	}

	unread, err := s.convRepo.CountUnread(ctx, cv.ID, viewerID)
	if err != nil {
		return nil, err
	}

	return &ConversationView{
		Conversation: *cv,
		Participants: participants,
		Product:      product,
		LastMessage:  last,
		UnreadCount:  unread,
	}, nil
}
