package repository

import (
	"context"
	"errors"

	"github.com/tiendalibre/marketplace-backend/internal/model"
	"gorm.io/gorm"
)

// UserDirectory is the read-only view of the user table the messaging core
// is allowed to see. Registration and profile management live elsewhere.
type UserDirectory interface {
	LookupUser(ctx context.Context, id uint64) (*model.User, error)
	LookupActiveUser(ctx context.Context, id uint64) (*model.User, error)
	LookupUsers(ctx context.Context, ids []uint64) (map[uint64]model.User, error)
	SetDB(db *gorm.DB)
}

type userDirectory struct {
	db *gorm.DB
}

func NewUserDirectory(db *gorm.DB) UserDirectory {
	return &userDirectory{db: db}
}

func (d *userDirectory) SetDB(db *gorm.DB) {
	d.db = db
}

func (d *userDirectory) LookupUser(ctx context.Context, id uint64) (*model.User, error) {
	if d.db == nil {
		return nil, ErrDBNotReady
	}
	var u model.User
	if err := d.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (d *userDirectory) LookupActiveUser(ctx context.Context, id uint64) (*model.User, error) {
	u, err := d.LookupUser(ctx, id)
	if err != nil || u == nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, nil
	}
	return u, nil
}

func (d *userDirectory) LookupUsers(ctx context.Context, ids []uint64) (map[uint64]model.User, error) {
	if d.db == nil {
		return nil, ErrDBNotReady
	}
	var users []model.User
	if err := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint64]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}
