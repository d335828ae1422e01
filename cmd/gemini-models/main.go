// Command gemini-models prints the Gemini models the configured
// GOOGLE_API_KEY can call generateContent on.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/saxenaraghav20/nutritionist-ai/internal/config"
	"github.com/saxenaraghav20/nutritionist-ai/internal/vision/gemini"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	models, err := gemini.ListModels(ctx, cfg.GoogleAPIKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list models: %v\n", err)
		return 1
	}
	if len(models) == 0 {
		fmt.Println("no models enabled for generateContent")
		return 0
	}
	for _, m := range models {
		fmt.Println(m)
	}
	return 0
}
