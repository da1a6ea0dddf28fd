package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clewlabs/memoria/internal/recall"
	"github.com/clewlabs/memoria/pkg/types"
)

var (
	recallUser  string
	recallTags  []string
	recallDesc  string
	recallQuery string
)

var recallCmd = &cobra.Command{
	Use:   "recall",
	Short: "Surface archived items relevant to the given context",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRecall()
	},
}

func init() {
	recallCmd.Flags().StringVar(&recallUser, "user", "cli-user", "archive owner id")
	recallCmd.Flags().StringSliceVar(&recallTags, "tags", nil, "context tags (comma separated)")
	recallCmd.Flags().StringVar(&recallDesc, "description", "", "free-text context description")
	recallCmd.Flags().StringVar(&recallQuery, "query", "", "explicit search query")
}

func runRecall() error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.engine.Recall(context.Background(), recall.Request{
		UserID: recallUser,
		ContextQuery: types.ContextQuery{
			ContextTags: recallTags,
			Description: recallDesc,
			Query:       recallQuery,
		},
	})
	if err != nil {
		return fmt.Errorf("recall failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
