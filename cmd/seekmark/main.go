package main

import (
	"log"

	"github.com/seekmark/seekmark/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ seekmark failed to start: %v", err)
	}
}
