package main

import (
	"log"

	"github.com/ysohn/markdrive/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ markdrive failed to start: %v", err)
	}
}
