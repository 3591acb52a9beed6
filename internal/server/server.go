package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/tiendalibre/marketplace-backend/internal/handler"
	appmw "github.com/tiendalibre/marketplace-backend/internal/middleware"
	"github.com/tiendalibre/marketplace-backend/internal/repository"
	"github.com/tiendalibre/marketplace-backend/internal/service"
	"gorm.io/gorm"
)

type Server struct {
	e          *echo.Echo
	convRepo   repository.ConversationRepository
	userDir    repository.UserDirectory
	productDir repository.ProductDirectory
	sha        string
	build      string
}

func New(db *gorm.DB, jwtSecret, sha, buildTime string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			host := u.Hostname()
			if strings.HasSuffix(host, "vercel.app") {
				return true, nil
			}
			return false, nil
		},
	}))

	userDir := repository.NewUserDirectory(db)
	productDir := repository.NewProductDirectory(db)
	convRepo := repository.NewConversationRepository(db)

	convSvc := service.NewConversationService(convRepo, userDir, productDir)
	msgSvc := service.NewMessageService(convRepo, userDir)

	convHandler := handler.NewConversationHandler(convSvc)
	msgHandler := handler.NewMessageHandler(msgSvc)

	authMw, err := appmw.NewAuthMiddleware(jwtSecret, userDir)
	if err != nil {
		e.Logger.Fatalf("failed to init auth middleware: %v", err)
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	api := e.Group("/api")
	api.GET("/conversations", convHandler.List, authMw.RequireAuth)
	api.POST("/conversations", convHandler.Resolve, authMw.RequireAuth)
	api.GET("/conversations/:id", convHandler.Get, authMw.RequireAuth)
	api.DELETE("/conversations/:id", convHandler.Delete, authMw.RequireAuth)
	api.GET("/conversations/:id/messages", msgHandler.List, authMw.RequireAuth)
	api.POST("/conversations/:id/messages", msgHandler.Send, authMw.RequireAuth)
	api.PUT("/conversations/:id/messages/read", msgHandler.MarkRead, authMw.RequireAuth)

	return &Server{e: e, convRepo: convRepo, userDir: userDir, productDir: productDir, sha: sha, build: buildTime}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) SetDB(db *gorm.DB) {
	if s.convRepo != nil {
		s.convRepo.SetDB(db)
	}
	if s.userDir != nil {
		s.userDir.SetDB(db)
	}
	if s.productDir != nil {
		s.productDir.SetDB(db)
	}
}
