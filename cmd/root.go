package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mai033/ai-chat-tool/internal/apiclient"
	"github.com/mai033/ai-chat-tool/internal/config"
	"github.com/mai033/ai-chat-tool/internal/logger"
	"github.com/mai033/ai-chat-tool/internal/session"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "aichat",
	Short: "AI Chat Tool: send prompts to the chat backend",
	Long: "AI Chat Tool. Pick a model, write an optional system prompt and a message,\n" +
		"and read the reply. Running without a subcommand opens the interactive form.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runForm(cmd.Context())
	},
}

// Execute runs the root command, cancelling its context on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer logger.Close()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().String("server-url", "", "backend server URL (overrides config)")
	rootCmd.PersistentFlags().String("log-file", "", "log file path (overrides config)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
}

// setup loads the configuration and starts logging. Flags take precedence
// over the environment, which takes precedence over the file.
func setup(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	c, err := config.Load(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("server-url") {
		c.ServerURL, _ = flags.GetString("server-url")
	}
	if flags.Changed("log-file") {
		c.LogFile, _ = flags.GetString("log-file")
	}
	if debug, _ := flags.GetBool("debug"); debug {
		c.Debug = true
	}
	if err := c.Validate(); err != nil {
		return err
	}

	logger.SetDebug(c.Debug)
	if err := logger.Init(c.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	logger.Debug("Config loaded from %s (server %s)", path, c.ServerURL)

	cfg = c
	return nil
}

func newClient() *apiclient.Client {
	return apiclient.New(cfg.ServerURL, apiclient.WithRateLimit(cfg.RateLimit))
}

func newController(opts ...session.Option) (*session.Controller, error) {
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	opts = append([]session.Option{
		session.WithTable(cfg.Table()),
		session.WithTimeout(timeout),
	}, opts...)
	return session.New(newClient(), opts...), nil
}
