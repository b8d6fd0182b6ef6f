package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/markpoint/backend/internal/auth"
	"github.com/markpoint/backend/internal/middleware"
)

// Router holds all handlers and creates the chi router
type Router struct {
	authHandler         *AuthHandler
	markHandler         *MarkHandler
	categoryHandler     *CategoryHandler
	commentHandler      *CommentHandler
	chatHandler         *ChatHandler
	subscriptionHandler *SubscriptionHandler
	notificationHandler *NotificationHandler
	wsHandler           *WSHandler
	healthHandler       *HealthHandler
	jwtManager          *auth.JWTManager
	logger              *zap.Logger
}

func NewRouter(
	authHandler *AuthHandler,
	markHandler *MarkHandler,
	categoryHandler *CategoryHandler,
	commentHandler *CommentHandler,
	chatHandler *ChatHandler,
	subscriptionHandler *SubscriptionHandler,
	notificationHandler *NotificationHandler,
	wsHandler *WSHandler,
	healthHandler *HealthHandler,
	jwtManager *auth.JWTManager,
	logger *zap.Logger,
) *Router {
	return &Router{
		authHandler:         authHandler,
		markHandler:         markHandler,
		categoryHandler:     categoryHandler,
		commentHandler:      commentHandler,
		chatHandler:         chatHandler,
		subscriptionHandler: subscriptionHandler,
		notificationHandler: notificationHandler,
		wsHandler:           wsHandler,
		healthHandler:       healthHandler,
		jwtManager:          jwtManager,
		logger:              logger,
	}
}

// Setup configures and returns the chi router
func (rt *Router) Setup() *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RecoveryMiddleware(rt.logger))
	r.Use(middleware.LoggingMiddleware(rt.logger))
	r.Use(middleware.CORSMiddleware())
	r.Use(chimiddleware.Compress(5))

	// Health endpoints (no auth required)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", rt.healthHandler.Health)
		r.Get("/ready", rt.healthHandler.Ready)
		r.Get("/live", rt.healthHandler.Live)
	})

	// WebSocket endpoints (token auth happens in the handler)
	r.Route("/ws", func(r chi.Router) {
		r.Get("/marks", rt.wsHandler.Marks)
		r.Get("/chat", rt.wsHandler.Chat)
		r.Get("/presence", rt.wsHandler.Presence)
	})

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes (no auth required)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", rt.authHandler.Register)
			r.Post("/login", rt.authHandler.Login)
			r.Post("/google", rt.authHandler.GoogleLogin)
			r.Post("/refresh", rt.authHandler.Refresh)
			r.Post("/logout", rt.authHandler.Logout)
		})

		// Public catalog and read endpoints; a valid token adds identity to
		// the context, anonymous requests pass through untouched.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuthMiddleware(rt.jwtManager))

			r.Get("/categories", rt.categoryHandler.GetCategories)
			r.Get("/marks", rt.markHandler.GetMarks)
			r.Get("/marks/{markId}", rt.markHandler.GetMark)
			r.Get("/marks/{markId}/comments", rt.commentHandler.GetComments)
			r.Get("/marks/{markId}/reactions", rt.commentHandler.ReactionCounts)
			r.Get("/plans", rt.subscriptionHandler.GetPlans)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(rt.jwtManager))

			r.Get("/me", rt.authHandler.Me)
			r.Post("/auth/logout-all", rt.authHandler.LogoutAll)

			r.Post("/marks", rt.markHandler.CreateMark)
			r.Patch("/marks/{markId}", rt.markHandler.UpdateMark)
			r.Delete("/marks/{markId}", rt.markHandler.DeleteMark)
			r.Post("/marks/photos", rt.markHandler.UploadPhoto)

			r.Post("/marks/{markId}/comments", rt.commentHandler.AddComment)
			r.Delete("/comments/{commentId}", rt.commentHandler.DeleteComment)
			r.Put("/marks/{markId}/reactions", rt.commentHandler.React)
			r.Delete("/marks/{markId}/reactions", rt.commentHandler.Unreact)

			r.Post("/chats", rt.chatHandler.CreateChat)
			r.Get("/chats", rt.chatHandler.GetChats)
			r.Get("/chats/{chatId}/messages", rt.chatHandler.GetMessages)
			r.Post("/chats/{chatId}/messages", rt.chatHandler.SendMessage)

			r.Post("/subscriptions", rt.subscriptionHandler.Subscribe)
			r.Get("/subscriptions/current", rt.subscriptionHandler.Current)
			r.Delete("/subscriptions/current", rt.subscriptionHandler.Cancel)

			r.Get("/notifications", rt.notificationHandler.GetNotifications)
			r.Post("/notifications/{notificationId}/read", rt.notificationHandler.MarkRead)
			r.Put("/notifications/fcm-token", rt.notificationHandler.UpdateFCMToken)
		})
	})

	return r
}
