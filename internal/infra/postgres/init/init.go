package infra_pg_init

import (
	"context"
	"log"
	"net"
	"net/url"
	"time"

	"github.com/humanbelnik/restaurantpicker/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const (
	connectTimeout  = 5 * time.Second
	maxOpenConns    = 10
	maxIdleConns    = 2
	connMaxLifetime = 30 * time.Minute
)

// DSN renders the postgres URL for cfg.
func DSN(cfg config.Postgres) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, cfg.Port),
		Path:     cfg.DBName,
		RawQuery: url.Values{"sslmode": {cfg.SSLMode}}.Encode(),
	}
	return u.String()
}

// MustEstablishConn opens the selection history database or stops the process.
func MustEstablishConn(cfg config.Postgres) *sqlx.DB {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", DSN(cfg))
	if err != nil {
		log.Fatalf("postgres %s unreachable: %v", net.JoinHostPort(cfg.Host, cfg.Port), err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	return db
}
