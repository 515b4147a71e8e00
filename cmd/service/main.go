package main

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/dirk.krummacker/contacts-api/internal/config"
	"gitlab.com/dirk.krummacker/contacts-api/internal/logger"
	"gitlab.com/dirk.krummacker/contacts-api/internal/repository"
	"gitlab.com/dirk.krummacker/contacts-api/internal/service"
	"gitlab.com/dirk.krummacker/contacts-api/internal/store"
)

// Usage example on the command line:
// > PORT=8080 REDIS_ADDR=localhost:6379 DB_NAMESPACE=contacts GIN_MODE=release go run main.go
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	redisStore := store.NewRedisStore(cfg.RedisAddr, cfg.Namespace, log)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := redisStore.Initialize(ctx); err != nil {
		log.Fatal(fmt.Sprintf(
			"contact store '%s' not reachable at %s; start a Redis server there or set REDIS_ADDR and DB_NAMESPACE",
			cfg.Namespace, cfg.RedisAddr),
			"error", err)
	}

	service.SetupRepository(repository.New(redisStore, log))
	router := service.SetupHttpRouter(cfg.AllowOrigins)
	log.Info("listening", "port", cfg.Port)
	if err := router.Run(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}
