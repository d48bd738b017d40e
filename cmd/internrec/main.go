// Command internrec recommends internship listings from a fitted bundle.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/internrec/internal/adapters/driving/cli"
)

func main() {
	// A missing .env is not an error.
	_ = godotenv.Load()

	cli.SetFactory(newAppFactory())
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
