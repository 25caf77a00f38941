package config

import (
	"context"
	"database/sql"

	"taskboard/internal/resetcode"
	myws "taskboard/internal/websocket"
	"taskboard/pkg/mailer"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
)

var (
	// Global dependencies shared across handlers. SecretKey and Mail are
	// replaced at startup from the loaded configuration; tests swap in
	// fakes.
	DB          *sql.DB
	SecretKey   = []byte("secret")
	Validate    = validator.New()
	Ctx         = context.Background()
	RedisClient *redis.Client
	ResetCodes  *resetcode.Store
	Mail        mailer.Mailer
	BoardHub    = myws.NewHub()
)
