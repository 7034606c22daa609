package infra_pg_init

import (
	"testing"

	"github.com/humanbelnik/restaurantpicker/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.Postgres{
		Host:     "db",
		Port:     "5432",
		User:     "picker",
		Password: "p@ss word",
		DBName:   "picker",
		SSLMode:  "disable",
	})

	assert.Equal(t, "postgres://picker:p%40ss%20word@db:5432/picker?sslmode=disable", dsn)
}
