package main

import (
	"os"

	"github.com/joho/godotenv"

	"inboxeval/internal/cli"
)

func main() {
	// Local overrides (agent tokens, endpoints); a missing .env is fine.
	_ = godotenv.Load()
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
