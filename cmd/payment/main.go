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
	"github.com/ariefcatur/saga-fulfillment/internal/payment"
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

	pShip := kafkax.NewProducer(cfg.KafkaBrokers, saga.QueueCreateShipping, 1024)
	pShip.Start(ctx)

	ledger := &payment.LedgerRepo{DB: db}

	// penulis ledger reservasi (bound ke ORDER_SUCCESS_EXCHANGE)
	writer := &payment.LedgerWriter{Store: ledger}
	go bus.Consume(ctx, saga.ExchangeOrderSuccess, writer.HandleLedgerEntry)

	// orchestrator konfirmasi pembayaran
	orch := &payment.Orchestrator{
		Bus:              bus,
		ShippingProducer: pShip,
		ShippingReplies:  pending.NewRegistry[saga.ShippingCreatedPayload](),
		Timeout:          cfg.PaymentTimeout,
		ServiceName:      cfg.ServiceName,
	}
	consShip := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ServiceName, saga.QueueCreateShippingSuccess, cfg.Workers)
	go func() {
		log.Printf("shipping reply consumer started: topic=%s", saga.QueueCreateShippingSuccess)
		if err := consShip.Start(ctx, orch.HandleShippingCreated); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// sweeper transaksi kedaluwarsa
	sweeper := &payment.Sweeper{
		Ledger:      ledger,
		Bus:         bus,
		Interval:    cfg.SweepInterval,
		AckTimeout:  cfg.SweepAckTimeout,
		ServiceName: cfg.ServiceName,
	}
	go sweeper.Run(ctx)

	router := httpx.NewRouter()
	(&payment.HTTPHandler{Orchestrator: orch}).Register(router)
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
	pShip.WaitClosed()
}
