package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/saga-fulfillment/internal/billing"
	"github.com/ariefcatur/saga-fulfillment/internal/config"
	kafkax "github.com/ariefcatur/saga-fulfillment/internal/kafka"
	"github.com/ariefcatur/saga-fulfillment/internal/postgres"
	"github.com/ariefcatur/saga-fulfillment/internal/redisx"
	"github.com/ariefcatur/saga-fulfillment/internal/saga"
	"github.com/joho/godotenv"
)

// Billing service: daemon consumer murni, tanpa HTTP.
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
	bus := redisx.NewBus(rdb)

	pFinish := kafkax.NewProducer(cfg.KafkaBrokers, saga.QueueOrderFinish, 1024)
	pFinish.Start(ctx)

	repo := &billing.Repo{DB: db}

	// penerbit tagihan: ORDER_USER_VALID -> ORDER_FINISH
	issuer := &billing.Issuer{
		Store:       repo,
		Producer:    pFinish,
		DueIn:       cfg.BillingDueIn,
		ServiceName: cfg.ServiceName,
	}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ServiceName, saga.QueueOrderUserValid, cfg.Workers)
	go func() {
		log.Printf("issuer consumer started: topic=%s workers=%d", saga.QueueOrderUserValid, cfg.Workers)
		if err := cons.Start(ctx, issuer.HandleUserValidated); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// subscriber update status pembayaran (tag "billing")
	updater := &billing.StatusUpdater{Store: repo, Bus: bus, ServiceName: cfg.ServiceName}
	go bus.Consume(ctx, saga.ExchangePayment, updater.HandlePaymentUpdate)

	// handler kompensasi tagihan kedaluwarsa
	comp := &billing.Compensator{Store: repo, Bus: bus, ServiceName: cfg.ServiceName}
	go bus.Consume(ctx, saga.ExchangeCancel, comp.HandleCancelBatch)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")
	cancel()
	pFinish.WaitClosed()
}
