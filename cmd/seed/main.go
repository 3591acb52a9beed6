package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/tiendalibre/marketplace-backend/internal/config"
	"github.com/tiendalibre/marketplace-backend/internal/db"
	"github.com/tiendalibre/marketplace-backend/internal/middleware"
	"github.com/tiendalibre/marketplace-backend/internal/model"
	"github.com/tiendalibre/marketplace-backend/internal/repository"
	"github.com/tiendalibre/marketplace-backend/internal/service"
	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	Username string
	Email    string
	Role     string
}

var seedUsers = []seedUser{
	{Username: "maria", Email: "maria@example.com", Role: model.RoleSeller},
	{Username: "carlos", Email: "carlos@example.com", Role: model.RoleBuyer},
	{Username: "lucia", Email: "lucia@example.com", Role: model.RoleBuyer},
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	conn, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	if err := conn.AutoMigrate(&model.User{}, &model.Product{}, &model.Conversation{}, &model.Message{}); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := make([]model.User, 0, len(seedUsers))
	for _, su := range seedUsers {
		avatar := fmt.Sprintf("https://storage.googleapis.com/tiendalibre-avatars/%s.png", uuid.NewString())
		u := model.User{
			Username: su.Username,
			Email:    su.Email,
			Password: string(hash),
			Avatar:   &avatar,
			Role:     su.Role,
			IsActive: true,
		}
		if err := conn.WithContext(ctx).
			Where("email = ?", su.Email).
			FirstOrCreate(&u).Error; err != nil {
			return err
		}
		users = append(users, u)
	}

	image := "https://storage.googleapis.com/tiendalibre-products/bicicleta.png"
	product := model.Product{
		UserID:   users[0].ID,
		Name:     "Bicicleta de montaña",
		Price:    150.00,
		Image:    &image,
		IsActive: true,
	}
	if err := conn.WithContext(ctx).
		Where("user_id = ? AND name = ?", product.UserID, product.Name).
		FirstOrCreate(&product).Error; err != nil {
		return err
	}

	userDir := repository.NewUserDirectory(conn)
	productDir := repository.NewProductDirectory(conn)
	convRepo := repository.NewConversationRepository(conn)
	convSvc := service.NewConversationService(convRepo, userDir, productDir)
	msgSvc := service.NewMessageService(convRepo, userDir)

	view, created, err := convSvc.Resolve(ctx, users[1].ID, users[0].ID, &product.ID)
	if err != nil {
		return err
	}
	if created {
		convID := view.Conversation.ID
		if _, err := msgSvc.Send(ctx, convID, users[1].ID, "Hola, ¿sigue disponible la bicicleta?"); err != nil {
			return err
		}
		if _, err := msgSvc.Send(ctx, convID, users[0].ID, "¡Hola! Sí, sigue disponible."); err != nil {
			return err
		}
	}

	for _, u := range users {
		token, err := middleware.SignToken(cfg.JWTSecret, u.ID, 24*time.Hour)
		if err != nil {
			return err
		}
		log.Printf("user %s (id=%d, role=%s) token: %s", u.Username, u.ID, u.Role, token)
	}
	log.Printf("seeded %d users, 1 product, conversation %d", len(users), view.Conversation.ID)
	return nil
}
