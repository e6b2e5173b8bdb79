// Command posctl administers a ticket POS installation from the shell: schema migration,
// seeding, account recovery and license key generation.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run(args []string) error {
	rootCmd := &cobra.Command{
		Use:           "posctl",
		Short:         "Ticket POS administration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `posctl manages the database of a ticket POS installation.

It reads the same environment (or .env file) as the API server, most importantly
DB_DRIVER and DB_DSN.`,
	}
	rootCmd.SetArgs(args)

	initCommands(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}
	return nil
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime)
	log.SetOutput(os.Stderr)
}
