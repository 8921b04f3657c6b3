package mariadb

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"github.com/sssihms/dashboard-backend/config"
)

var (
	db   *sql.DB
	once sync.Once
)

// Connect opens the HIS database and configures the bounded connection pool.
// When every connection is in use, callers block inside database/sql until
// one is released, they do not fail fast.
func Connect() *sql.DB {
	once.Do(func() {
		cfg := config.LoadConfig()
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

		var err error
		db, err = sql.Open("mysql", dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open database connection")
		}

		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
		db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

		if err = db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("failed to ping database")
		}

		log.Info().
			Int("max_open", cfg.DBMaxOpenConns).
			Int("max_idle", cfg.DBMaxIdleConns).
			Msg("connected to HIS database")
	})

	return db
}

// GetDB returns the already established database handle.
func GetDB() *sql.DB {
	return db
}
