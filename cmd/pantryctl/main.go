// Command pantryctl manages the pantry from a terminal, against the same
// store the API uses.
package main

import (
	"context"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"pantry/internal/config"
	"pantry/internal/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.Location())

	root, sess := newRootCmd(cfg, log)
	err := root.ExecuteContext(context.Background())
	sess.Close()
	if err != nil {
		os.Exit(1)
	}
}
