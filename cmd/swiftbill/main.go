package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const appVersion = "2.0.0"

func main() {
	// .env is optional; real deployments mostly use plain environment.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:     "swiftbill",
		Short:   "SwiftBill POS print agent",
		Version: appVersion,
	}
	root.AddCommand(serveCmd(), devicesCmd(), discoverCmd(), printTestCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
