package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lokadesain/orderflow/internal/config"
	"github.com/lokadesain/orderflow/internal/httpx"
	"github.com/lokadesain/orderflow/internal/kafkax"
	"github.com/lokadesain/orderflow/internal/orders"
	"github.com/lokadesain/orderflow/internal/orderstore"
	"github.com/lokadesain/orderflow/internal/postgres"
	"github.com/lokadesain/orderflow/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB + migrasi
	if err := postgres.Migrate(cfg.PostgresDSN, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers: satu per topic
	created := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, cfg.ServiceName, 1024)
	created.Start(ctx)
	statusChanged := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, cfg.ServiceName, 1024)
	statusChanged.Start(ctx)

	svc := &orderstore.Service{
		Repo:          &orderstore.Repo{DB: db},
		Machine:       orders.Machine{Strict: cfg.StatusStrict},
		RDB:           rdb,
		Created:       created,
		StatusChanged: statusChanged,
	}

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{Svc: svc}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	created.Close() // tutup inbox -> flush & close writer
	statusChanged.Close()
	cancel() // stop producer loop
	created.WaitClosed()
	statusChanged.WaitClosed()
}
