// Notifier: jembatan bus -> push channel. Consume order.status.changed
// dari Kafka lalu siarkan amplop "order_update" ke semua viewer WebSocket.
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
	"golang.org/x/sync/errgroup"

	"github.com/lokadesain/orderflow/internal/config"
	"github.com/lokadesain/orderflow/internal/kafkax"
	"github.com/lokadesain/orderflow/internal/orders"
	"github.com/lokadesain/orderflow/internal/ws"
)

func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	srv := &http.Server{Addr: cfg.WSAddr, Handler: mux}

	consumer := kafkax.NewConsumer(cfg.KafkaBrokers, "notifier", orders.TopicOrderStatusChanged, 4)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		log.Info().Str("addr", cfg.WSAddr).Msg("WS listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shCtx)
	})

	g.Go(func() error {
		return consumer.Start(gctx, func(ctx context.Context, env orders.Envelope) error {
			switch env.EventType {
			case orders.EventOrderStatusChanged:
				payload, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
				if err != nil {
					log.Warn().Err(err).Str("event_id", env.EventID).Msg("payload rusak, skip")
					return nil
				}
				hub.BroadcastOrderUpdate(payload)
				log.Debug().
					Str("order_id", payload.ID).
					Str("status", string(payload.Status)).
					Int64("version", payload.Version).
					Msg("order update disiarkan")
			case orders.EventOrderDeleted:
				payload, err := kafkax.UnwrapPayload[orders.OrderDeletedPayload](env.Payload)
				if err != nil {
					log.Warn().Err(err).Str("event_id", env.EventID).Msg("payload rusak, skip")
					return nil
				}
				hub.BroadcastOrderDeleted(payload)
				log.Debug().Str("order_id", payload.ID).Msg("order deleted disiarkan")
			}
			return nil
		})
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("notifier berhenti")
	}
}
