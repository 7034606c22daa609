package infra_redis_init

import (
	"log"
	"net"
	"time"

	"github.com/go-redis/redis"
	"github.com/humanbelnik/restaurantpicker/internal/config"
)

const (
	dialTimeout = 3 * time.Second
	ioTimeout   = 2 * time.Second
)

// MustEstablishConn connects to the outcome archive or stops the process.
func MustEstablishConn(cfg config.RedisCache) *redis.Client {
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	})

	if _, err := client.Ping().Result(); err != nil {
		log.Fatalf("redis %s unreachable: %v", addr, err)
	}
	return client
}
