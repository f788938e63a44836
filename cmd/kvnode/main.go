package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/AlexandraB-C/PR-LAB-4/internal/config"
	"github.com/AlexandraB-C/PR-LAB-4/internal/node"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (env vars override)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	n, err := node.New(cfg)
	if err != nil {
		log.Fatalf("build node: %v", err)
	}

	srv := node.NewServer(n, cfg.ListenAddr)

	log.Printf("starting %s node on %s (quorum=%d, followers=%d)",
		cfg.Role, cfg.ListenAddr, cfg.WriteQuorum, len(cfg.FollowerURLs))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Printf("shutdown signal received")
		if err := srv.Shutdown(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
