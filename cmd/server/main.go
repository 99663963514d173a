package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/norumander/wow-server-sim/internal/app"
)

func main() {
	configDir := flag.String("config-dir", ".", "directory containing server config file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx, *configDir); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
