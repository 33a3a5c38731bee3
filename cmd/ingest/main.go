package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"Stratus/internal/config"
	"Stratus/internal/ingest"
	mdb "Stratus/internal/mongo"
)

func init() {
	_ = godotenv.Load() // .env
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Print(err)
		return 1
	}
	ctx := context.Background()

	mc, err := mdb.NewClient(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Printf("mongo connect: %v", err)
		return 1
	}
	defer mc.Close(ctx)

	sum := ingest.Run(ctx, cfg, mc)
	ingest.PrintSummary(os.Stdout, sum)
	if !sum.Success {
		return 1
	}
	return 0
}
