package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/tiendalibre/marketplace-backend/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&model.User{}, &model.Product{}, &model.Conversation{}, &model.Message{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestCreateRefusesDuplicatePair(t *testing.T) {
	conn := setupDB(t)
	repo := NewConversationRepository(conn)
	ctx := context.Background()

	if _, err := repo.Create(ctx, 1, 2, nil); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := repo.Create(ctx, 2, 1, nil)
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected ErrDuplicatedKey, got %v", err)
	}

	var count int64
	if err := conn.Model(&model.Conversation{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 conversation, got %d", count)
	}
}

func TestCreateRefusesSelfPair(t *testing.T) {
	conn := setupDB(t)
	repo := NewConversationRepository(conn)

	if _, err := repo.Create(context.Background(), 7, 7, nil); !errors.Is(err, ErrSameParticipants) {
		t.Fatalf("expected ErrSameParticipants, got %v", err)
	}
}

func TestFindByPairIsOrderIndependent(t *testing.T) {
	conn := setupDB(t)
	repo := NewConversationRepository(conn)
	ctx := context.Background()

	created, err := repo.Create(ctx, 5, 3, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, pair := range [][2]uint64{{3, 5}, {5, 3}} {
		got, err := repo.FindByPair(ctx, pair[0], pair[1])
		if err != nil {
			t.Fatalf("find (%d,%d): %v", pair[0], pair[1], err)
		}
		if got == nil || got.ID != created.ID {
			t.Fatalf("find (%d,%d): got %+v want id %d", pair[0], pair[1], got, created.ID)
		}
	}

	missing, err := repo.FindByPair(ctx, 3, 99)
	if err != nil {
		t.Fatalf("find missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing pair, got %+v", missing)
	}
}

func TestFindByUserOrdersByRecency(t *testing.T) {
	conn := setupDB(t)
	repo := NewConversationRepository(conn)
	ctx := context.Background()

	first, err := repo.Create(ctx, 1, 2, nil)
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := repo.Create(ctx, 1, 3, nil)
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	// A new message in the older conversation must float it to the top.
	time.Sleep(10 * time.Millisecond)
	msg := &model.Message{ConversationID: first.ID, SenderID: 2, Content: "hola"}
	if err := repo.CreateMessage(ctx, msg); err != nil {
		t.Fatalf("create message: %v", err)
	}

	list, err := repo.FindByUser(ctx, 1)
	if err != nil {
		t.Fatalf("find by user: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(list))
	}
	if list[0].ID != first.ID || list[1].ID != second.ID {
		t.Fatalf("wrong order: got [%d %d] want [%d %d]", list[0].ID, list[1].ID, first.ID, second.ID)
	}
}

func TestCreateMessageMovesLastMessagePointer(t *testing.T) {
	conn := setupDB(t)
	repo := NewConversationRepository(conn)
	ctx := context.Background()

	cv, err := repo.Create(ctx, 1, 2, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if cv.LastMessageID != nil {
		t.Fatalf("fresh conversation has last message pointer")
	}

	m1 := &model.Message{ConversationID: cv.ID, SenderID: 1, Content: "a"}
	m2 := &model.Message{ConversationID: cv.ID, SenderID: 2, Content: "b"}
	for _, m := range []*model.Message{m1, m2} {
		if err := repo.CreateMessage(ctx, m); err != nil {
			t.Fatalf("create message: %v", err)
		}
	}

	got, err := repo.FindByID(ctx, cv.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.LastMessageID == nil || *got.LastMessageID != m2.ID {
		t.Fatalf("last message pointer = %v, want %d", got.LastMessageID, m2.ID)
	}
}

func TestDeleteCascadesMessages(t *testing.T) {
	conn := setupDB(t)
	repo := NewConversationRepository(conn)
	ctx := context.Background()

	cv, err := repo.Create(ctx, 1, 2, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 3; i++ {
		m := &model.Message{ConversationID: cv.ID, SenderID: 1, Content: "m"}
		if err := repo.CreateMessage(ctx, m); err != nil {
			t.Fatalf("create message: %v", err)
		}
	}

	if err := repo.Delete(ctx, cv.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var msgCount int64
	if err := conn.Model(&model.Message{}).Where("conversation_id = ?", cv.ID).Count(&msgCount).Error; err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if msgCount != 0 {
		t.Fatalf("expected 0 messages after cascade, got %d", msgCount)
	}
	if _, err := repo.FindByID(ctx, cv.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	conn := setupDB(t)
	repo := NewConversationRepository(conn)
	ctx := context.Background()

	cv, err := repo.Create(ctx, 1, 2, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 3; i++ {
		m := &model.Message{ConversationID: cv.ID, SenderID: 1, Content: "m"}
		if err := repo.CreateMessage(ctx, m); err != nil {
			t.Fatalf("create message: %v", err)
		}
	}

	unread, err := repo.CountUnread(ctx, cv.ID, 2)
	if err != nil {
		t.Fatalf("count unread: %v", err)
	}
	if unread != 3 {
		t.Fatalf("unread for reader = %d, want 3", unread)
	}
	senderUnread, err := repo.CountUnread(ctx, cv.ID, 1)
	if err != nil {
		t.Fatalf("count unread sender: %v", err)
	}
	if senderUnread != 0 {
		t.Fatalf("own messages counted as unread: %d", senderUnread)
	}

	if err := repo.MarkRead(ctx, cv.ID, 2); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	unread, err = repo.CountUnread(ctx, cv.ID, 2)
	if err != nil {
		t.Fatalf("count unread after mark: %v", err)
	}
	if unread != 0 {
		t.Fatalf("unread after mark read = %d, want 0", unread)
	}

	// Idempotent: a second mark with nothing unread is a no-op.
	if err := repo.MarkRead(ctx, cv.ID, 2); err != nil {
		t.Fatalf("second mark read: %v", err)
	}
}

func TestListMessagesPagesNewestFirst(t *testing.T) {
	conn := setupDB(t)
	repo := NewConversationRepository(conn)
	ctx := context.Background()

	cv, err := repo.Create(ctx, 1, 2, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var ids []uint64
	for i := 0; i < 5; i++ {
		m := &model.Message{ConversationID: cv.ID, SenderID: 1, Content: fmt.Sprintf("m%d", i)}
		if err := repo.CreateMessage(ctx, m); err != nil {
			t.Fatalf("create message: %v", err)
		}
		ids = append(ids, m.ID)
	}

	msgs, total, err := repo.ListMessages(ctx, cv.ID, 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 {
		t.Fatalf("total = %d, want 5", total)
	}
	if len(msgs) != 2 || msgs[0].ID != ids[4] || msgs[1].ID != ids[3] {
		t.Fatalf("page 1 = %+v, want ids [%d %d]", msgs, ids[4], ids[3])
	}
}
