package main

import (
	"net/http"

	_ "github.com/joho/godotenv/autoload"

	"cinelog/internal/bookmarks"
	"cinelog/internal/catalog"
	"cinelog/internal/config"
	"cinelog/internal/engagement"
	"cinelog/internal/handlers"
	"cinelog/internal/identity"
	"cinelog/internal/logging"
	"cinelog/internal/store"
	"cinelog/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	// Open the document store: SQLite when a data path is configured,
	// in-memory otherwise.
	var st store.Store
	if cfg.DataPath != "" {
		sqlite, err := store.OpenSQLite(cfg.DataPath)
		if err != nil {
			logging.Fatal().Err(err).Str("path", cfg.DataPath).Msg("failed to open store")
		}
		st = sqlite
		logging.Info().Str("path", cfg.DataPath).Msg("using sqlite store")
	} else {
		st = store.NewMemory()
		logging.Warn().Msg("no data path configured, using in-memory store")
	}
	defer st.Close()

	// Interactive sign-in needs the external identity provider.
	var external identity.Verifier
	if cfg.ExternalIdPEnabled() {
		verifier, err := identity.NewExternalVerifier(cfg.IdP.Domain, cfg.IdP.Audience)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to create identity verifier")
		}
		external = verifier
	}

	provider := identity.NewProvider(st, cfg.Session.Secret, cfg.Session.TTL, external)
	stopSweeper := provider.StartSweeper()
	defer stopSweeper()

	cache := catalog.New(st)
	bookmarkManager := bookmarks.NewManager(st)
	aggregator := engagement.NewAggregator(st)

	catalogHandler := handlers.NewCatalogHandler(cache, aggregator, bookmarkManager)
	bookmarkHandler := handlers.NewBookmarkHandler(bookmarkManager, cache)
	engagementHandler := handlers.NewEngagementHandler(aggregator, cache)
	sessionHandler := handlers.NewSessionHandler(provider)
	liveHandler := ws.NewHandler(provider, bookmarkManager, aggregator)

	// Setup router using standard library ServeMux
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	requireAuth := identity.RequireAuth(provider)
	optionalAuth := identity.OptionalAuth(provider)

	// Session routes
	mux.HandleFunc("POST /api/session/anonymous", sessionHandler.SignInAnonymous)
	mux.HandleFunc("POST /api/session/token", sessionHandler.SignInWithToken)
	mux.HandleFunc("POST /api/session/interactive", sessionHandler.SignInInteractive)
	mux.HandleFunc("DELETE /api/session", sessionHandler.SignOut)
	mux.HandleFunc("GET /api/me", requireAuth(http.HandlerFunc(sessionHandler.Me)).ServeHTTP)

	// Catalog routes (public; bookmark flags appear when signed in)
	mux.HandleFunc("GET /api/catalog/{type}", optionalAuth(http.HandlerFunc(catalogHandler.ListItems)).ServeHTTP)
	mux.HandleFunc("GET /api/catalog/{type}/{id}", optionalAuth(http.HandlerFunc(catalogHandler.GetItem)).ServeHTTP)

	// Engagement routes
	mux.HandleFunc("POST /api/catalog/{type}/{id}/rating", requireAuth(http.HandlerFunc(engagementHandler.Rate)).ServeHTTP)
	mux.HandleFunc("POST /api/catalog/{type}/{id}/comments", requireAuth(http.HandlerFunc(engagementHandler.Comment)).ServeHTTP)

	// Bookmark routes
	mux.HandleFunc("GET /api/me/bookmarks", requireAuth(http.HandlerFunc(bookmarkHandler.List)).ServeHTTP)
	mux.HandleFunc("PUT /api/me/bookmarks/{id}", requireAuth(http.HandlerFunc(bookmarkHandler.Add)).ServeHTTP)
	mux.HandleFunc("DELETE /api/me/bookmarks/{id}", requireAuth(http.HandlerFunc(bookmarkHandler.Remove)).ServeHTTP)

	// Live snapshot streaming
	mux.HandleFunc("GET /api/live", optionalAuth(liveHandler).ServeHTTP)

	logging.Info().Str("listen", cfg.Listen).Msg("server starting")
	if err := http.ListenAndServe(cfg.Listen, mux); err != nil {
		logging.Fatal().Err(err).Msg("server stopped")
	}
}
