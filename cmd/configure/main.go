package main

import (
	"fmt"
	"os"

	"github.com/mindwell/mindwell-api/cmd/configure/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "mindwell-configure",
		Short: "Configuration tool for the MindWell API",
		Long:  "CLI tool for managing stored runtime configuration and user data",
	}

	rootCmd.AddCommand(commands.NewListCmd())
	rootCmd.AddCommand(commands.NewCorsCmd())
	rootCmd.AddCommand(commands.NewRatelimitCmd())
	rootCmd.AddCommand(commands.NewEraseUserCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
