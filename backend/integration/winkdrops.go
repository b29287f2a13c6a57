// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package integration

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	jww "github.com/spf13/jwalterweatherman"

	"github.com/efchatnet/winkdrops/backend/handlers"
	"github.com/efchatnet/winkdrops/backend/mailbox"
	"github.com/efchatnet/winkdrops/backend/middleware"
	"github.com/efchatnet/winkdrops/backend/session"
	"github.com/efchatnet/winkdrops/backend/storage"
	"github.com/efchatnet/winkdrops/backend/storage/postgres"
	redisStore "github.com/efchatnet/winkdrops/backend/storage/redis"
)

// Advisor is the full AI surface used by the API
type Advisor interface {
	mailbox.Advisor
	handlers.AdviceService
}

// Config holds configuration for the WinkDrops integration
type Config struct {
	DB        *sql.DB
	Redis     *redis.Client
	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	// Advisor may be nil; AI endpoints then answer 503
	Advisor Advisor

	// AIRate and AIBurst bound each user's calls to AI endpoints
	AIRate  float64
	AIBurst int
}

// Integration wires the message engine, its stores and HTTP handlers
type Integration struct {
	store     *postgres.Store
	sessions  *session.Registry
	limiter   *middleware.RateLimiter
	jwt       *middleware.JWTConfig
	publisher *redisStore.Publisher

	messageHandler       *handlers.MessageHandler
	secondOpinionHandler *handlers.SecondOpinionHandler
	contactHandler       *handlers.ContactHandler
	communityHandler     *handlers.CommunityHandler
	notificationHandler  *handlers.NotificationHandler
	adviceHandler        *handlers.AdviceHandler
	authHandler          *handlers.AuthHandler
}

// New runs migrations, seeds the demo accounts and builds the handlers
func New(ctx context.Context, config *Config) (*Integration, error) {
	if config.JWTSecret == "" {
		return nil, &ValidationError{Message: "JWT secret is not configured"}
	}

	store := postgres.NewStore(config.DB, config.Redis)
	if err := store.Migrate(); err != nil {
		return nil, err
	}
	if err := handlers.EnsureDemoAccounts(ctx, store); err != nil {
		return nil, err
	}

	// a nil *advisor.Service must not reach the mailbox as a non-nil interface
	var mailboxAdvisor mailbox.Advisor
	var adviceService handlers.AdviceService
	if config.Advisor != nil {
		mailboxAdvisor = config.Advisor
		adviceService = config.Advisor
	}

	publisher := redisStore.NewPublisher(config.Redis)
	sessions := session.NewRegistry(store, publisher, mailboxAdvisor)
	jwt := &middleware.JWTConfig{
		Secret: config.JWTSecret,
		Issuer: config.JWTIssuer,
		TTL:    config.JWTTTL,
	}

	return &Integration{
		store:     store,
		sessions:  sessions,
		limiter:   middleware.NewRateLimiter(config.AIRate, config.AIBurst),
		jwt:       jwt,
		publisher: publisher,

		messageHandler:       handlers.NewMessageHandler(sessions),
		secondOpinionHandler: handlers.NewSecondOpinionHandler(sessions),
		contactHandler:       handlers.NewContactHandler(sessions),
		communityHandler:     handlers.NewCommunityHandler(sessions, store),
		notificationHandler:  handlers.NewNotificationHandler(sessions, publisher),
		adviceHandler:        handlers.NewAdviceHandler(adviceService),
		authHandler:          handlers.NewAuthHandler(store, store, sessions, jwt),
	}, nil
}

// RegisterRoutes adds WinkDrops routes to an existing router
// If authMiddleware is nil, it will use the built-in JWT validation
func (e *Integration) RegisterRoutes(router *mux.Router, authMiddleware func(http.Handler) http.Handler) {
	public := router.PathPrefix("/api/auth").Subrouter()
	public.HandleFunc("/login", e.authHandler.Login).Methods("POST", "OPTIONS")
	public.HandleFunc("/signup", e.authHandler.Signup).Methods("POST", "OPTIONS")
	public.HandleFunc("/google", e.authHandler.GoogleSignIn).Methods("POST", "OPTIONS")

	api := router.PathPrefix("/api").Subrouter()
	if authMiddleware != nil {
		api.Use(authMiddleware)
	} else {
		api.Use(middleware.NewAuthMiddleware(e.jwt.Secret, e.jwt.Issuer))
	}

	// Account endpoints
	api.HandleFunc("/me", e.authHandler.Me).Methods("GET", "OPTIONS")
	api.HandleFunc("/me/consents", e.authHandler.UpdateConsents).Methods("PUT", "OPTIONS")
	api.HandleFunc("/me/onboarding", e.authHandler.CompleteOnboarding).Methods("POST", "OPTIONS")
	api.HandleFunc("/logout", e.authHandler.Logout).Methods("POST", "OPTIONS")

	// Message endpoints
	api.HandleFunc("/messages/inbox", e.messageHandler.GetInbox).Methods("GET", "OPTIONS")
	api.HandleFunc("/messages/outbox", e.messageHandler.GetOutbox).Methods("GET", "OPTIONS")
	api.HandleFunc("/messages/receive", e.messageHandler.Receive).Methods("POST", "OPTIONS")
	api.HandleFunc("/messages/{messageId}", e.messageHandler.GetMessage).Methods("GET", "OPTIONS")
	api.HandleFunc("/messages/{messageId}/read", e.messageHandler.MarkRead).Methods("POST", "OPTIONS")
	api.HandleFunc("/messages/{messageId}", e.messageHandler.DeleteMessage).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/nudges", e.messageHandler.SendNudge).Methods("POST", "OPTIONS")
	api.HandleFunc("/winks/{winkId}/updates", e.messageHandler.AddWinkUpdate).Methods("POST", "OPTIONS")

	// Second opinion endpoints
	api.HandleFunc("/winks/{winkId}/second-opinions", e.secondOpinionHandler.RequestOpinions).Methods("POST", "OPTIONS")
	api.HandleFunc("/second-opinions/{requestId}/respond", e.secondOpinionHandler.Respond).Methods("POST", "OPTIONS")

	// Contact endpoints
	api.HandleFunc("/contacts", e.contactHandler.ListContacts).Methods("GET", "OPTIONS")
	api.HandleFunc("/contacts", e.contactHandler.AddContacts).Methods("POST", "OPTIONS")
	api.HandleFunc("/contacts/{contactId}", e.contactHandler.EditContact).Methods("PUT", "OPTIONS")
	api.HandleFunc("/contacts/{contactId}", e.contactHandler.DeleteContact).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/contacts/{contactId}/blocked", e.contactHandler.SetBlocked).Methods("PUT", "OPTIONS")

	// Community endpoints
	api.HandleFunc("/community/winks", e.communityHandler.GetFeed).Methods("GET", "OPTIONS")
	api.HandleFunc("/community/winks/{winkId}/react", e.communityHandler.React).Methods("POST", "OPTIONS")
	api.HandleFunc("/winks/{winkId}/share", e.communityHandler.Share).Methods("POST", "OPTIONS")
	api.HandleFunc("/community/experiences", e.communityHandler.ListExperiences).Methods("GET", "OPTIONS")
	api.HandleFunc("/community/experiences", e.communityHandler.AddExperience).Methods("POST", "OPTIONS")

	// Notification endpoints
	api.HandleFunc("/notifications", e.notificationHandler.GetStatus).Methods("GET", "OPTIONS")
	api.HandleFunc("/notifications/settings", e.notificationHandler.UpdateSettings).Methods("PATCH", "OPTIONS")
	api.HandleFunc("/notifications/permission", e.notificationHandler.SetPermission).Methods("PUT", "OPTIONS")
	api.HandleFunc("/notifications/subscribe", e.notificationHandler.Subscribe).Methods("POST", "OPTIONS")
	api.HandleFunc("/notifications/unsubscribe", e.notificationHandler.Unsubscribe).Methods("POST", "OPTIONS")
	api.HandleFunc("/notifications/stream", e.notificationHandler.Stream).Methods("GET")

	// AI-backed endpoints share a per-user rate limit
	ai := api.NewRoute().Subrouter()
	ai.Use(e.limiter.Middleware)
	ai.HandleFunc("/winks", e.messageHandler.SendWink).Methods("POST", "OPTIONS")
	ai.HandleFunc("/winks/{winkId}/update-suggestions", e.messageHandler.UpdateSuggestions).Methods("POST", "OPTIONS")
	ai.HandleFunc("/winks/{winkId}/local-resources", e.messageHandler.FindLocalResources).Methods("POST", "OPTIONS")
	ai.HandleFunc("/winks/{winkId}/social-resources", e.messageHandler.FindSocialResources).Methods("POST", "OPTIONS")
	ai.HandleFunc("/advice/social-posts", e.adviceHandler.SocialPosts).Methods("POST", "OPTIONS")
	ai.HandleFunc("/advice/gift-ideas", e.adviceHandler.GiftIdeas).Methods("POST", "OPTIONS")
	ai.HandleFunc("/advice/reverse-geocode", e.adviceHandler.ReverseGeocode).Methods("POST", "OPTIONS")
}

// GetStore returns the underlying storage implementation
func (e *Integration) GetStore() storage.Store {
	return e.store
}

// Sessions exposes the live per-user state, for embedding servers
func (e *Integration) Sessions() *session.Registry {
	return e.sessions
}

// StartCleanup evicts idle rate limiter entries until stop is closed
func (e *Integration) StartCleanup(interval time.Duration, stop <-chan struct{}) {
	go e.limiter.Cleanup(interval, stop)
	jww.INFO.Printf("[WinkDrops] limiter cleanup every %s", interval)
}

// ValidateSetup checks that the backing services are reachable
func (e *Integration) ValidateSetup(ctx context.Context) error {
	if err := e.store.Ping(ctx); err != nil {
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
