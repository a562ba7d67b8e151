package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mindwell/mindwell-api/internal/config"
	"github.com/mindwell/mindwell-api/internal/database"
	"github.com/spf13/cobra"
)

// NewEraseUserCmd creates the erase-user command. It removes every row a user
// owns: conversation blob, moods, transitions, summaries, and events.
func NewEraseUserCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "erase-user <user_id>",
		Short: "Erase all stored data for a user",
		Long:  "Delete a user's conversation, mood history, summaries, and events from the database. This cannot be undone.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := strings.TrimSpace(args[0])
			if userID == "" {
				return fmt.Errorf("user_id is required")
			}

			if !force {
				fmt.Printf("This will permanently erase all data for user %q. Type the user id to confirm: ", userID)
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("read confirmation: %w", err)
				}
				if strings.TrimSpace(line) != userID {
					fmt.Println("Aborted.")
					return nil
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := database.New(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			if err := db.EraseUser(context.Background(), userID); err != nil {
				return fmt.Errorf("failed to erase user: %w", err)
			}

			fmt.Printf("Erased all data for user %s.\n", userID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")
	return cmd
}
