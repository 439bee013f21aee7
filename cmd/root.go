package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ai-advisor/server/internal/config"
	logx "github.com/ai-advisor/server/pkg/logger"
)

// NewRootCmd builds the advisor command tree.
func NewRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "advisor",
		Short: "AI Advisor backend: visualization normalizer and advisor API",
		Long: `advisor serves the AI Advisor HTTP API. It normalizes visualization
payloads returned by the advisor model into typed table and chart
descriptors, reports whether a model API key is configured, and answers
advisor questions through a Gemini-backed chain with an optional Redis
reply cache.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	load := func() (*config.AppConfig, error) {
		cfg, err := config.Load(envFile)
		if err != nil {
			return nil, err
		}
		logx.Init(logx.LoggerOpts{Environment: cfg.Env()})
		return cfg, nil
	}

	root.AddCommand(newServeCmd(load))
	root.AddCommand(newNormalizeCmd())
	root.AddCommand(newCheckKeyCmd(load))
	return root
}

// Execute is called by main.go and is the entry point for the CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type configLoader func() (*config.AppConfig, error)
