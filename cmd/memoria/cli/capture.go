package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var captureUser string

var captureCmd = &cobra.Command{
	Use:   "capture <url-or-text>",
	Short: "Archive a URL or raw text with a generated summary and tags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCapture(args[0])
	},
}

func init() {
	captureCmd.Flags().StringVar(&captureUser, "user", "cli-user", "archive owner id")
}

func runCapture(input string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	item, err := a.capture.Capture(context.Background(), captureUser, input)
	if err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(item)
}
