package main

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"Stratus/internal/config"
	"Stratus/internal/httpx"
	"Stratus/internal/ingest"
	mdb "Stratus/internal/mongo"
)

func init() {
	_ = godotenv.Load() // .env
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	mc, err := mdb.NewClient(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal(err)
	}
	defer mc.Close(ctx)

	obs := mc.Observations(cfg.MongoCollection)
	if err := obs.EnsureIndexes(ctx); err != nil {
		log.Fatal(err)
	}

	status := &httpx.RunStatus{}

	// One run at a time; a schedule tick that lands mid-run is dropped.
	var running sync.Mutex
	runOnce := func() {
		if !running.TryLock() {
			log.Printf(`{"lvl":"warn","msg":"ingest already running, tick skipped"}`)
			return
		}
		defer running.Unlock()
		status.Record(ingest.Run(ctx, cfg, mc))
	}

	go runOnce()

	c := cron.New()
	if _, err := c.AddFunc(cfg.IngestSchedule, runOnce); err != nil {
		log.Fatal(err)
	}
	c.Start()
	defer c.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpx.NewRouter(mc, obs, status),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	log.Printf(`{"msg":"listening","port":%q,"schedule":%q}`, cfg.Port, cfg.IngestSchedule)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
