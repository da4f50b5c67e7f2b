package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/miragepark/community-portal/internal/auth"
	"github.com/miragepark/community-portal/internal/config"
	"github.com/miragepark/community-portal/internal/db"
	"github.com/miragepark/community-portal/internal/logging"
	"github.com/miragepark/community-portal/internal/patreon"
	"github.com/miragepark/community-portal/internal/portal"
	"github.com/miragepark/community-portal/internal/version"
)

func main() {
	configPath := os.Getenv("PORTAL_CONFIG")
	if configPath == "" {
		configPath = "portal.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	database, err := db.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if cfg.PatreonClientID == "" || cfg.PatreonClientSecret == "" {
		log.Printf("Patreon client credentials not set; the membership link flow will fail until PATREON_CLIENT_ID and PATREON_CLIENT_SECRET are configured")
	}

	// Keep stored Patreon tokens fresh in the background
	refreshManager := patreon.NewRefreshManager(database, cfg)
	refreshManager.StartRefreshLoop()

	// Create router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(logging.Middleware)

	// ============================================
	// Patreon link surfaces (browser redirects and platform pushes)
	// ============================================

	r.Get("/patreon-oauth", patreon.OAuthHandler(database, cfg))
	r.Post("/patreon-webhook", patreon.WebhookHandler(database, cfg))

	r.Route("/api", func(r chi.Router) {
		// Public reads; viewer identity is optional and only widens access
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalUser(database))
			r.Get("/posts", portal.ListPostsHandler(database))
			r.Get("/posts/{id}", portal.GetPostHandler(database))
			r.Get("/posts/{id}/comments", portal.ListCommentsHandler(database))
			r.Get("/roadmap/funding", portal.GetFundingHandler(database))
		})

		// Connect initiator: verifies the caller itself, then redirects
		r.Get("/patreon/connect", patreon.ConnectHandler(database, cfg))

		// Signed-in surface
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser(database))
			r.Get("/patreon/status", patreon.StatusHandler(database))
			r.Post("/patreon/disconnect", patreon.DisconnectHandler(database))
			r.Post("/posts/{id}/comments", portal.CreateCommentHandler(database))
			r.Put("/comments/{id}", portal.UpdateCommentHandler(database))
			r.Delete("/comments/{id}", portal.DeleteCommentHandler(database))
			r.Post("/qna/questions", portal.SubmitQuestionHandler(database))
			r.Get("/qna/questions", portal.MyQuestionsHandler(database))
		})

		// Admin surface
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireUser(database))
			r.Use(portal.RequireAdmin(database))
			r.Post("/posts", portal.CreatePostHandler(database))
			r.Put("/posts/{id}", portal.UpdatePostHandler(database))
			r.Delete("/posts/{id}", portal.DeletePostHandler(database))
			r.Get("/qna/questions", portal.ListQuestionsHandler(database))
			r.Post("/qna/questions/{id}/answer", portal.AnswerQuestionHandler(database))
			r.Delete("/qna/questions/{id}", portal.DeleteQuestionHandler(database))
			r.Post("/roadmap/funding", portal.UpdateFundingHandler(database))
		})
	})

	log.Printf("Community portal %s starting on http://%s", version.Version, cfg.Addr())
	if err := http.ListenAndServe(cfg.Addr(), r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
