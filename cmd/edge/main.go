package main

import (
	"log"

	"github.com/vaporshelf/edge/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ edge failed to start: %v", err)
	}
}
