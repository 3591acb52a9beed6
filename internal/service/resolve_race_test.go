package service

import (
	"context"
	"testing"

	"github.com/tiendalibre/marketplace-backend/internal/model"
	"gorm.io/gorm"
)

type stubUsers struct {
	users map[uint64]model.User
}

func (s *stubUsers) LookupUser(_ context.Context, id uint64) (*model.User, error) {
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (s *stubUsers) LookupActiveUser(ctx context.Context, id uint64) (*model.User, error) {
	u, err := s.LookupUser(ctx, id)
	if err != nil || u == nil || !u.IsActive {
		return nil, err
	}
	return u, nil
}

func (s *stubUsers) LookupUsers(_ context.Context, ids []uint64) (map[uint64]model.User, error) {
	out := make(map[uint64]model.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (s *stubUsers) SetDB(*gorm.DB) {}

type stubProducts struct{}

func (stubProducts) LookupProduct(context.Context, uint64) (*model.Product, error) { return nil, nil }
func (stubProducts) SetDB(*gorm.DB)                                                {}

// racingConvRepo simulates losing the creation race: the pair is absent at
// lookup time, the insert hits the unique pair-key index, and the winner's
// row is visible on the retry.
type racingConvRepo struct {
	winner  model.Conversation
	lookups int
	creates int
}

func (r *racingConvRepo) FindByPair(context.Context, uint64, uint64) (*model.Conversation, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, nil
	}
	cv := r.winner
	return &cv, nil
}

func (r *racingConvRepo) Create(context.Context, uint64, uint64, *uint64) (*model.Conversation, error) {
	r.creates++
	return nil, gorm.ErrDuplicatedKey
}

func (r *racingConvRepo) FindByID(_ context.Context, id uint64) (*model.Conversation, error) {
	cv := r.winner
	return &cv, nil
}

func (r *racingConvRepo) FindByUser(context.Context, uint64) ([]model.Conversation, error) {
	return nil, nil
}

func (r *racingConvRepo) Delete(context.Context, uint64) error { return nil }

func (r *racingConvRepo) CreateMessage(context.Context, *model.Message) error { return nil }

func (r *racingConvRepo) ListMessages(context.Context, uint64, int, int) ([]model.Message, int64, error) {
	return nil, 0, nil
}

func (r *racingConvRepo) CountUnread(context.Context, uint64, uint64) (int64, error) { return 0, nil }

func (r *racingConvRepo) MarkRead(context.Context, uint64, uint64) error { return nil }

func (r *racingConvRepo) SetDB(*gorm.DB) {}

func TestResolveReconcilesLostCreationRace(t *testing.T) {
	users := &stubUsers{users: map[uint64]model.User{
		1: {ID: 1, Username: "ana", IsActive: true},
		2: {ID: 2, Username: "beto", IsActive: true},
	}}
	repo := &racingConvRepo{
		winner: model.Conversation{ID: 42, UserLowID: 1, UserHighID: 2, PairKey: model.PairKeyFor(1, 2)},
	}
	svc := NewConversationService(repo, users, stubProducts{})

	view, created, err := svc.Resolve(context.Background(), 1, 2, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if created {
		t.Fatalf("losing the race must not report created")
	}
	if view.Conversation.ID != 42 {
		t.Fatalf("conversation id = %d, want the winner's 42", view.Conversation.ID)
	}
	if repo.creates != 1 || repo.lookups != 2 {
		t.Fatalf("expected 1 create and 2 lookups, got %d/%d", repo.creates, repo.lookups)
	}
}
