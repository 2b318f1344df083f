// migrate applies the embedded schema migrations to the configured database.
package main

import (
	"flag"
	"fmt"
	"os"

	"homehold/internal/config"
	"homehold/internal/db/migrate"
)

func main() {
	direction := flag.String("direction", "up", "up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	if err := migrate.Run(cfg.DatabaseURL, *direction); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}
