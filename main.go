package main

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sssihms/dashboard-backend/config"
	"github.com/sssihms/dashboard-backend/internal/metrics/store"
	"github.com/sssihms/dashboard-backend/internal/routes"
	"github.com/sssihms/dashboard-backend/pkg/storage/mariadb"
)

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func main() {
	cfg := config.LoadConfig()

	if cfg.AppEnv != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db := mariadb.Connect()

	metricStore, err := store.New(cfg.MetricsFile)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.MetricsFile).Msg("failed to open metric registry")
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	routes.Init(e, db, cfg, metricStore)

	log.Info().Str("port", cfg.Port).Msg("dashboard backend listening")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
