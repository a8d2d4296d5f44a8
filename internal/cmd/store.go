package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/notelink/notelink/internal/config"
	notestore "github.com/notelink/notelink/internal/notes/store"
)

func openStore(ctx context.Context) (*notestore.Store, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := notestore.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	cliLogger.Debug("store ready",
		zap.String("driver", cfg.Store.Driver),
		zap.String("path", cfg.Store.Path),
		zap.Bool("remote", cfg.Store.URL != ""))

	return db, nil
}
