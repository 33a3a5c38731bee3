package main

import (
	"context"
	"log"
	"os"

	"Stratus/internal/config"
	"Stratus/internal/ingest"
	mdb "Stratus/internal/mongo"
)

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

	sum := ingest.Run(ctx, cfg, mc)
	ingest.PrintSummary(os.Stdout, sum)
	mc.Close(ctx)
	if !sum.Success {
		os.Exit(1)
	}
	log.Println("ingest done")
}
