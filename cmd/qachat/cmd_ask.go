package main

import (
	"fmt"
	"strings"

	"qachat/internal/controller"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// askCmd sends a single question
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("question is empty")
	}

	client, err := newBackend(cfg)
	if err != nil {
		return err
	}

	logger.Debug("asking", zap.String("url", client.URL()), zap.Int("query_len", len(query)))
	reply, err := client.Generate(cmd.Context(), query)
	fmt.Fprintln(cmd.OutOrStdout(), controller.ResolveText(reply, err))
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	return nil
}
