package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/saga-fulfillment/internal/config"
	kafkax "github.com/ariefcatur/saga-fulfillment/internal/kafka"
	"github.com/ariefcatur/saga-fulfillment/internal/postgres"
	"github.com/ariefcatur/saga-fulfillment/internal/redisx"
	"github.com/ariefcatur/saga-fulfillment/internal/saga"
	"github.com/ariefcatur/saga-fulfillment/internal/shipping"
	"github.com/joho/godotenv"
)

// Shipping service: daemon consumer murni, tanpa HTTP.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	pSuccess := kafkax.NewProducer(cfg.KafkaBrokers, saga.QueueCreateShippingSuccess, 1024)
	pSuccess.Start(ctx)

	creator := &shipping.Creator{
		Store:       &shipping.Repo{DB: db},
		Dedup:       redisx.Dedup{R: rdb, Service: cfg.ServiceName},
		Producer:    pSuccess,
		ServiceName: cfg.ServiceName,
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ServiceName, saga.QueueCreateShipping, cfg.Workers)
	go func() {
		log.Printf("shipment consumer started: topic=%s workers=%d", saga.QueueCreateShipping, cfg.Workers)
		if err := cons.Start(ctx, creator.HandleShippingRequested); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")
	cancel()
	pSuccess.WaitClosed()
}
