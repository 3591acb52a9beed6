package repository

import (
	"context"
	"errors"

	"github.com/tiendalibre/marketplace-backend/internal/model"
	"gorm.io/gorm"
)

// ProductDirectory resolves product references attached to conversations.
// A missing or deactivated product resolves to nil rather than an error, so
// a conversation outlives the product it was opened about.
type ProductDirectory interface {
	LookupProduct(ctx context.Context, id uint64) (*model.Product, error)
	SetDB(db *gorm.DB)
}

type productDirectory struct {
	db *gorm.DB
}

func NewProductDirectory(db *gorm.DB) ProductDirectory {
	return &productDirectory{db: db}
}

func (d *productDirectory) SetDB(db *gorm.DB) {
	d.db = db
}

func (d *productDirectory) LookupProduct(ctx context.Context, id uint64) (*model.Product, error) {
	if d.db == nil {
		return nil, ErrDBNotReady
	}
	var p model.Product
	if err := d.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !p.IsActive {
		return nil, nil
	}
	return &p, nil
}
