package main

import (
	"fmt"
	"os"

	"github.com/gcclean/trash-service/internal/auth"
	"github.com/gcclean/trash-service/internal/config"
	"github.com/gcclean/trash-service/internal/db"
	"github.com/gcclean/trash-service/internal/excel"
	httphandler "github.com/gcclean/trash-service/internal/http"
	"github.com/gcclean/trash-service/internal/http/middleware"
	"github.com/gcclean/trash-service/internal/logger"
	"github.com/gcclean/trash-service/internal/pdf"
	"github.com/gcclean/trash-service/internal/photo"
	"github.com/gcclean/trash-service/internal/repository"
	"github.com/gcclean/trash-service/internal/service"
	"github.com/gcclean/trash-service/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	host, _ := os.Hostname()
	log := logger.New(cfg.Environment)
	reporter := logger.NewReporter(cfg.RollbarToken, cfg.Environment, host)

	// exit reports err and flushes the tracker before exiting.
	exit := func(err error, msg string) {
		log.Error().Err(err).Msg(msg)
		reporter.Report(err, msg, nil)
		logger.Flush()
		os.Exit(1)
	}

	database, err := db.New(cfg, log)
	if err != nil {
		exit(err, "failed to connect database")
	}

	objects, err := storage.New(cfg.Storage)
	if err != nil {
		exit(err, "failed to init photo storage")
	}

	trashRepo := repository.NewTrashRepository(database)
	profileRepo := repository.NewProfileRepository(database)

	trashService := service.NewTrashService(trashRepo, objects, photo.NewProcessor(cfg.Trash.PhotoMaxSide), cfg, log)
	leaderboardService := service.NewLeaderboardService(trashRepo, profileRepo, excel.NewGenerator(), pdf.NewGenerator(), cfg, log)
	profileService := service.NewProfileService(profileRepo, cfg)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(trashService, leaderboardService, profileService, log, reporter)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Str("storage", cfg.Storage.Driver).Msg("starting trash service")

	if err := router.Run(addr); err != nil {
		exit(err, "server stopped")
	}
}
