package main

import (
	"log"

	"github.com/postway/postway/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ postway failed to start: %v", err)
	}
}
