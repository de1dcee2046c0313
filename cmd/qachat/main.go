package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"qachat/internal/backend"
	"qachat/internal/config"
	"qachat/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath string
	backendURL string
	endpoint   string
	topK       int
	timeout    string
	verbose    bool

	// Effective configuration, resolved before every command
	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "qachat",
	Short: "qachat - terminal chat client for a question-answering backend",
	Long: `qachat sends questions to a question-answering backend and shows the
answers in a scrolling transcript.

Each question is posted as {"query": "..."} to <base_url><endpoint>; the
"response" field of the reply is shown in place of a "..." placeholder.

Run without arguments to start the interactive chat interface.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.Sync()
	},
	RunE: runChat,
}

// setup resolves configuration in the order .env, config file, environment,
// flags, then initializes logging.
func setup(cmd *cobra.Command, args []string) error {
	// .env values feed the QACHAT_* overrides; existing variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, loaded)
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	if err := logging.Initialize(cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logging.Get(logging.CategoryBoot).Info("configuration resolved",
		zap.String("config", path),
		zap.String("backend", cfg.Backend.GenerateURL()),
		zap.String("command", cmd.Name()))

	// The interactive chat owns the terminal; it only logs to category files
	if !cmd.HasParent() {
		logger = zap.NewNop()
		return nil
	}

	logger, err = logging.NewCLILogger(verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("backend") {
		c.Backend.BaseURL = backendURL
	}
	if flags.Changed("endpoint") {
		c.Backend.Endpoint = endpoint
	}
	if flags.Changed("top-k") {
		c.Backend.TopK = topK
	}
	if flags.Changed("timeout") {
		c.Backend.Timeout = timeout
	}
	if verbose {
		c.Logging.Level = "debug"
	}
}

// newBackend builds the backend client from the effective config.
func newBackend(c *config.Config) (*backend.Client, error) {
	d, err := c.Backend.GetTimeout()
	if err != nil {
		return nil, err
	}
	return backend.NewClient(backend.Options{
		BaseURL:  c.Backend.BaseURL,
		Endpoint: c.Backend.Endpoint,
		TopK:     c.Backend.TopK,
		Timeout:  d,
		Logger:   logging.Get(logging.CategoryAPI),
	}), nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: .qachat/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Backend base URL (or set QACHAT_BACKEND_URL)")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Generate endpoint path (default: /generate)")
	rootCmd.PersistentFlags().IntVar(&topK, "top-k", 0, "Documents retrieved per query (0 = server default)")
	rootCmd.PersistentFlags().StringVar(&timeout, "timeout", "", "Request timeout, e.g. 30s (default: none)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.Flags().BoolVar(&plainMode, "plain", false, "Use line mode instead of the full-screen interface")

	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "File with one question per line (default: stdin)")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "n", 4, "Maximum concurrent requests")

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	// Add commands to root
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.CloseAll()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
