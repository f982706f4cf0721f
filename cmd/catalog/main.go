package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/saga-fulfillment/internal/catalog"
	"github.com/ariefcatur/saga-fulfillment/internal/config"
	"github.com/ariefcatur/saga-fulfillment/internal/httpx"
	kafkax "github.com/ariefcatur/saga-fulfillment/internal/kafka"
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

	pValid := kafkax.NewProducer(cfg.KafkaBrokers, saga.QueueOrderProductValid, 1024)
	pValid.Start(ctx)
	pInvalid := kafkax.NewProducer(cfg.KafkaBrokers, saga.QueueOrderInvalid, 1024)
	pInvalid.Start(ctx)

	repo := &catalog.Repo{DB: db}
	svc := &catalog.Service{
		Store:           repo,
		Dedup:           redisx.Dedup{R: rdb, Service: cfg.ServiceName},
		ProducerValid:   pValid,
		ProducerInvalid: pInvalid,
		ServiceName:     cfg.ServiceName,
	}

	// consumer reservasi: ORDER_START
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ServiceName, saga.QueueOrderStart, cfg.Workers)
	go func() {
		log.Printf("reservation consumer started: topic=%s workers=%d", saga.QueueOrderStart, cfg.Workers)
		if err := cons.Start(ctx, svc.HandleOrderRequested); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// handler kompensasi stok
	comp := &catalog.Compensator{Store: repo, Bus: bus, ServiceName: cfg.ServiceName}
	go bus.Consume(ctx, saga.ExchangeCancel, comp.HandleCancelBatch)

	// endpoint baca produk
	router := httpx.NewRouter()
	(&catalog.HTTPHandler{Repo: repo}).Register(router)
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
	pValid.WaitClosed()
	pInvalid.WaitClosed()
}
