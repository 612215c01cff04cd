package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"postboard/internal/config"
	"postboard/internal/database"
	handlers "postboard/internal/handler"
	"postboard/internal/hasher"
	"postboard/internal/repository"
	"postboard/internal/service"
	"postboard/internal/session"
	"postboard/internal/util"
)

// App wires the store, services and HTTP surface together. The caller owns the
// returned DB and must close it.
func App(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*database.DB, http.Handler, error) {
	db, err := database.ConnectDB(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось подключиться к БД: %w", err)
	}

	clock := util.NewRealClock()

	repo := repository.NewRepository(db.DB)
	services := service.NewService(repo, hasher.NewBcrypt(cfg.BcryptCost), clock)
	gate := session.NewGate(cfg.Session, clock)

	h := handlers.NewHandlers(services, gate, db, logger)

	return db, h.Routes(), nil
}
