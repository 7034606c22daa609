package config

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"localhost"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

type Room struct {
	Capacity   int           `env:"ROOM_CAPACITY" envDefault:"10"`
	CodeLength int           `env:"ROOM_CODE_LENGTH" envDefault:"4"`
	Grace      time.Duration `env:"SELECTION_GRACE" envDefault:"5s"`
	SendBuffer int           `env:"WS_SEND_BUFFER" envDefault:"32"`
}

type QuickDraw struct {
	Countdown     time.Duration `env:"QUICKDRAW_COUNTDOWN" envDefault:"3s"`
	MinDelay      time.Duration `env:"QUICKDRAW_MIN_DELAY" envDefault:"2s"`
	MaxDelay      time.Duration `env:"QUICKDRAW_MAX_DELAY" envDefault:"5s"`
	ReportTimeout time.Duration `env:"QUICKDRAW_REPORT_TIMEOUT" envDefault:"10s"`
}

type RedisCache struct {
	Enabled    bool          `env:"REDIS_ENABLED" envDefault:"false"`
	Host       string        `env:"REDIS_HOST" envDefault:"redis"`
	Port       string        `env:"REDIS_PORT" envDefault:"6379"`
	Password   string        `env:"REDIS_PASSWORD" envDefault:"shared"`
	OutcomeTTL time.Duration `env:"OUTCOME_TTL" envDefault:"1h"`
}

type Postgres struct {
	Enabled  bool   `env:"DB_ENABLED" envDefault:"false"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"admin"`
	Password string `env:"DB_PASSWORD" envDefault:"shared"`
	DBName   string `env:"DB_NAME" envDefault:"picker"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

type Logger struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type Config struct {
	HTTP      HTTPServer
	Room      Room
	QuickDraw QuickDraw
	Redis     RedisCache
	Postgres  Postgres
	Logger    Logger
}

const logtag = "[config]"

func Load() *Config {
	configPath := flag.String("config", "", "path env file")
	flag.Parse()

	if *configPath != "" {
		if err := godotenv.Load(*configPath); err != nil {
			log.Fatalf("%s err loading env from file : %v", logtag, err)
		}
		log.Printf("%s using env from : %s", logtag, *configPath)
	} else {
		log.Printf("%s using env from .env", logtag)
		_ = godotenv.Load()
	}

	cfg, err := Parse()
	if err != nil {
		log.Fatalf("%s %v", logtag, err)
	}

	log.Printf("%s backend config : %+v\n", logtag, cfg.redacted())
	return cfg
}

// Parse fills a Config from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Room.Capacity < 1 {
		return fmt.Errorf("ROOM_CAPACITY must be positive, got %d", c.Room.Capacity)
	}
	if c.Room.CodeLength < 1 || c.Room.CodeLength > 16 {
		return fmt.Errorf("ROOM_CODE_LENGTH must be in [1, 16], got %d", c.Room.CodeLength)
	}
	if c.QuickDraw.MaxDelay < c.QuickDraw.MinDelay {
		return fmt.Errorf("QUICKDRAW_MAX_DELAY %s is below QUICKDRAW_MIN_DELAY %s",
			c.QuickDraw.MaxDelay, c.QuickDraw.MinDelay)
	}
	return nil
}

func (c Config) redacted() Config {
	if c.Redis.Password != "" {
		c.Redis.Password = "***"
	}
	if c.Postgres.Password != "" {
		c.Postgres.Password = "***"
	}
	return c
}
