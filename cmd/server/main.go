package main

import (
	"context"
	"database/sql"
	"flag"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/technosupport/ts-sentinel/internal/analytics"
	"github.com/technosupport/ts-sentinel/internal/api"
	"github.com/technosupport/ts-sentinel/internal/broadcast"
	"github.com/technosupport/ts-sentinel/internal/cameras"
	"github.com/technosupport/ts-sentinel/internal/classify"
	"github.com/technosupport/ts-sentinel/internal/config"
	"github.com/technosupport/ts-sentinel/internal/crowd"
	"github.com/technosupport/ts-sentinel/internal/detect"
	"github.com/technosupport/ts-sentinel/internal/logging"
	"github.com/technosupport/ts-sentinel/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logging.NewLogger(cfg.LogLevel)

	// 1. Postgres. A failed ping does not abort startup: the store runs
	// degraded and recovers when the database comes back.
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		log.Error("db open failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		log.Warn("database unreachable, starting degraded", "error", err)
	}
	cancelPing()

	// 2. Optional backends.
	var cache *crowd.LatestCache
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		cache = crowd.NewLatestCache(rdb, time.Duration(cfg.Crowd.CacheTTLSeconds)*time.Second)
		log.Info("redis crowd cache enabled", "addr", cfg.Redis.Addr)
	}

	var natsPub *broadcast.NATSPublisher
	if cfg.NATS.Enabled {
		nc, err := nats.Connect(cfg.NATS.URL)
		if err != nil {
			log.Warn("nats connect failed, mirror disabled", "url", cfg.NATS.URL, "error", err)
		} else {
			defer nc.Close()
			natsPub = broadcast.NewNATSPublisher(nc, cfg.NATS.Subject, cfg.NATS.PublishRetryMax)
			log.Info("nats mirror enabled", "subject", cfg.NATS.Subject)
		}
	}

	// 3. Pipeline components.
	classifier := classify.New(cfg.Thresholds)
	registry := cameras.DefaultRegistry()
	buffer := crowd.NewBuffer(cfg.Crowd.BufferSize)
	events := store.New(db, log)

	hub := broadcast.NewHub(cfg.Broadcast.SubscriberBuffer, log)
	dedup := broadcast.NewDedup(cfg.Broadcast.DedupMaxKeys, time.Duration(cfg.Broadcast.DedupTTLSeconds)*time.Second)
	bcast := broadcast.NewBroadcaster(hub, dedup, natsPub, log)

	producer := detect.NewSyntheticProducer(registry, classifier, rand.New(rand.NewSource(time.Now().UnixNano())))
	generator := detect.NewGenerator(producer, events, buffer, cache, bcast, log)

	eventMin, eventMax := cfg.EventInterval()
	crowdMin, crowdMax := cfg.CrowdInterval()
	eventSched := detect.NewScheduler("events", eventMin, eventMax, generator.GenerateEvent, log)
	crowdSched := detect.NewScheduler("crowd", crowdMin, crowdMax, generator.SampleCrowd, log)
	eventSched.Start()
	crowdSched.Start()

	// 4. Threshold hot reload.
	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	config.WatchThresholds(watchCtx, *configPath, classifier.SetThresholds, log)

	// 5. HTTP.
	agg := analytics.New(events, buffer)
	handler := api.NewHandler(events, agg, buffer, cache, registry, bcast, classifier, log)

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: api.NewRouter(handler),
	}

	go func() {
		log.Info("ts-sentinel listening", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// 6. Graceful shutdown: stop producing, then drain HTTP.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	eventSched.Stop()
	crowdSched.Stop()
	cancelWatch()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
	}
}
