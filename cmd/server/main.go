package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GriffinCanCode/catalogd/internal/infrastructure/config"
	"github.com/GriffinCanCode/catalogd/internal/infrastructure/server"
)

func main() {
	// Parse flags
	port := flag.String("port", "", "Server port (overrides PORT)")
	cataloguePath := flag.String("catalogue", "", "Catalogue file or directory (overrides CATALOGUE_PATH)")
	dev := flag.Bool("dev", false, "Development logging")
	stdio := flag.Bool("mcp", false, "Serve MCP over stdio instead of HTTP")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *cataloguePath != "" {
		cfg.Catalogue.Path = *cataloguePath
	}
	if *dev {
		cfg.Logging.Development = config.Bool(true)
		cfg.Logging.Level = "debug"
	}

	mode := server.ModeHTTP
	if *stdio {
		mode = server.ModeStdio
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(ctx, cfg, mode)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Run until a signal arrives or the surface fails
	runErr := srv.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Close(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	if runErr != nil {
		log.Fatalf("Server error: %v", runErr)
	}
}
