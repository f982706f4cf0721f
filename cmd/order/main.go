package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/saga-fulfillment/internal/config"
	"github.com/ariefcatur/saga-fulfillment/internal/httpx"
	kafkax "github.com/ariefcatur/saga-fulfillment/internal/kafka"
	"github.com/ariefcatur/saga-fulfillment/internal/orders"
	"github.com/ariefcatur/saga-fulfillment/internal/pending"
	"github.com/ariefcatur/saga-fulfillment/internal/postgres"
	"github.com/ariefcatur/saga-fulfillment/internal/redisx"
	"github.com/ariefcatur/saga-fulfillment/internal/saga"
	"github.com/joho/godotenv"
)

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

	pStart := kafkax.NewProducer(cfg.KafkaBrokers, saga.QueueOrderStart, 1024)
	pStart.Start(ctx)

	repo := &orders.Repo{DB: db}
	waiters := pending.NewRegistry[orders.Outcome]()

	// finalizer + resolver invalid: dua consumer, satu registry, tepat satu
	// resolusi per intake
	fin := &orders.Finalizer{Store: repo, Bus: bus, Waiters: waiters, ServiceName: cfg.ServiceName}

	consFinish := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ServiceName, saga.QueueOrderFinish, cfg.Workers)
	go func() {
		log.Printf("finalizer consumer started: topic=%s", saga.QueueOrderFinish)
		if err := consFinish.Start(ctx, fin.HandleOrderCompleted); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	consInvalid := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ServiceName, saga.QueueOrderInvalid, cfg.Workers)
	go func() {
		log.Printf("invalidation consumer started: topic=%s", saga.QueueOrderInvalid)
		if err := consInvalid.Start(ctx, fin.HandleOrderInvalid); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// subscriber update status pembayaran (tag "order")
	updater := &orders.StatusUpdater{Store: repo, Bus: bus, ServiceName: cfg.ServiceName}
	go bus.Consume(ctx, saga.ExchangePayment, updater.HandlePaymentUpdate)

	// handler kompensasi order kedaluwarsa
	comp := &orders.Compensator{Store: repo, Bus: bus, ServiceName: cfg.ServiceName}
	go bus.Consume(ctx, saga.ExchangeCancel, comp.HandleCancelBatch)

	// HTTP intake
	router := httpx.NewRouter()
	oh := &orders.HTTPHandler{
		Repo:        repo,
		Producer:    pStart,
		Waiters:     waiters,
		Redis:       rdb,
		WaitTimeout: cfg.OrderWaitTimeout,
		ServiceName: cfg.ServiceName,
	}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	cancel()
	pStart.WaitClosed()
}
