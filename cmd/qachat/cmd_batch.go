package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"qachat/internal/controller"
	"qachat/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	batchFile        string
	batchConcurrency int
)

// batchCmd answers a list of questions
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Answer one question per line from a file or stdin",
	Long: `Reads questions one per line, sends them concurrently and prints the
answers in input order. Blank lines are skipped.`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

type batchItem struct {
	Query  string
	Answer string
	Err    error
}

func runBatch(cmd *cobra.Command, args []string) error {
	if batchConcurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", batchConcurrency)
	}

	in := cmd.InOrStdin()
	if batchFile != "" {
		f, err := os.Open(batchFile)
		if err != nil {
			return fmt.Errorf("failed to open questions: %w", err)
		}
		defer f.Close()
		in = f
	}

	queries, err := readQueries(in)
	if err != nil {
		return err
	}

	client, err := newBackend(cfg)
	if err != nil {
		return err
	}

	items := answerAll(cmd.Context(), client, queries, batchConcurrency)

	failed := 0
	out := cmd.OutOrStdout()
	for _, item := range items {
		if item.Err != nil {
			failed++
		}
		fmt.Fprintf(out, "Q: %s\nA: %s\n\n", item.Query, item.Answer)
	}
	logger.Info("batch complete", zap.Int("questions", len(items)), zap.Int("failed", failed))
	return nil
}

// readQueries returns the trimmed non-blank lines of r.
func readQueries(r io.Reader) ([]string, error) {
	var queries []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if q := strings.TrimSpace(scanner.Text()); q != "" {
			queries = append(queries, q)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read questions: %w", err)
	}
	return queries, nil
}

// answerAll runs at most limit requests at a time. A failed request becomes
// the error text of its item and does not stop the others.
func answerAll(ctx context.Context, gen controller.Generator, queries []string, limit int) []batchItem {
	log := logging.Get(logging.CategoryBatch)
	items := make([]batchItem, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			reply, err := gen.Generate(gctx, q)
			if err != nil {
				log.Warn("question failed", zap.Int("index", i), zap.Error(err))
			}
			items[i] = batchItem{Query: q, Answer: controller.ResolveText(reply, err), Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return items
}
