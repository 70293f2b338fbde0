package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"annah-server/client"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	serverURL := os.Getenv("ANNAH_SERVER")
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}

	token := os.Getenv("ANNAH_TOKEN")
	if token == "" {
		log.Fatal("ANNAH_TOKEN is required (log in via POST /api/auth/login)")
	}

	desktopEnabled := os.Getenv("ANNAH_DESKTOP_NOTIFICATIONS") != "off"

	notifier := client.NewNotifier(desktopEnabled)
	notifier.RequestPermission()

	sink, err := client.NewSink(serverURL, token, notifier, func(message string) {
		log.Printf("[ALERT] %s", message)
	})
	if err != nil {
		log.Fatal("Invalid server URL:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Connecting to %s", serverURL)
	if err := sink.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("Connection lost:", err)
	}
}
