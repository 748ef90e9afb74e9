package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/akl7777777/whoami-probe/internal/config"
	"github.com/akl7777777/whoami-probe/internal/lookup"
	"github.com/akl7777777/whoami-probe/internal/server"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] Config error: %v", err)
	}

	svc, err := lookup.NewService(cfg)
	if err != nil {
		log.Fatalf("[main] Service error: %v", err)
	}

	log.Printf("[main] whoami-probe: lookup=%s cache=%v database=%v timeout=%s",
		cfg.LookupURL, cfg.Cache.Enabled(), cfg.DB.Enabled(), cfg.ProbeTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = server.NewBootstrap(cfg, svc).Run(ctx)
	stop()
	svc.Close()
	if err != nil {
		log.Fatalf("[main] Server error: %v", err)
	}

	log.Println("[main] Server stopped")
}
