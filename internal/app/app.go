// Package app wires the application's dependencies together.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"menu-planner/internal/clipper"
	"menu-planner/internal/config"
	"menu-planner/internal/database"
	"menu-planner/internal/ghost"
	"menu-planner/internal/llm"
	"menu-planner/internal/menu"
	"menu-planner/internal/metrics"
	"menu-planner/internal/preferences"
	"menu-planner/internal/recipe"
	"menu-planner/internal/shopping"
)

// App holds the application's dependencies.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *database.DB

	Recipes   *recipe.Repository
	Menus     *menu.Repository
	Shopping  *shopping.Service
	Metrics   *metrics.Store
	Favorites *preferences.Favorites
	History   *preferences.History
	Clipper   *clipper.Clipper

	// Importer is nil when Ghost is not configured.
	Importer *Importer

	closers []llm.Closer
}

// New opens the database and builds every service the configuration
// enables.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.NewDB(cfg.DatabasePath, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		DB:      db,
		Recipes: recipe.NewRepository(db.SQL),
		Menus:   menu.NewRepository(db.SQL),
		Metrics: metrics.NewStore(db.SQL),
	}
	a.Shopping = shopping.NewService(shopping.NewRepository(db.SQL), a.Menus, logger.Named("shopping"))

	prefs := preferences.NewSQLiteStore(db.SQL)
	a.Favorites = preferences.NewFavorites(prefs)
	a.History = preferences.NewHistory(prefs)

	var extractor *recipe.Extractor
	if cfg.AIEnabled() {
		gemini, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create AI client: %w", err)
		}
		a.closers = append(a.closers, gemini)
		extractor = recipe.NewExtractor(gemini)
	} else {
		logger.Info("GEMINI_API_KEY not set, AI extraction disabled")
	}

	var ghostClient ghost.Client
	if cfg.GhostEnabled() {
		ghostClient = ghost.NewClient(cfg)
		a.Importer = NewImporter(ghostClient, a.Recipes, extractor, a.Metrics, logger.Named("importer"))
	}
	a.Clipper = clipper.NewClipper(a.Recipes, extractor, ghostClient, a.Metrics, logger.Named("clipper"))

	return a, nil
}

// Close releases the AI client and the database.
func (a *App) Close() error {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.Logger.Warn("failed to close client", zap.Error(err))
		}
	}
	return a.DB.Close()
}
