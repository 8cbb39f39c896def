package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgPkg "github.com/xhad/docqa/pkg/config"
)

var (
	cfg    *cfgPkg.Config
	logger = zap.NewNop()

	configPath string
	flagModel  string
	flagURL    string
	flagDBURL  string
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Answer questions about PDF documents with a local LLM",
	Long:  "Extracts text from PDF documents, plans an answer and asks the model to respond using only what the documents say.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := cfgPkg.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		applyFlags(cmd, c)

		if errs := c.Validate(); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintln(os.Stderr, e.Error())
			}
			return fmt.Errorf("invalid configuration: %d errors", len(errs))
		}
		cfg = c

		l, err := cfgPkg.NewLogger(cfg.Log)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l
		zap.ReplaceGlobals(logger)

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// applyFlags overrides config values with flags set on the command line.
func applyFlags(cmd *cobra.Command, c *cfgPkg.Config) {
	flags := cmd.Flags()
	if flags.Changed("model") {
		c.LLM.Model = flagModel
	}
	if flags.Changed("llm-url") {
		c.LLM.BaseURL = flagURL
	}
	if flags.Changed("db-url") {
		c.Database.URL = flagDBURL
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to config file")
	pf.StringVar(&flagModel, "model", "", "LLM model to use")
	pf.StringVar(&flagURL, "llm-url", "", "LLM server URL")
	pf.StringVar(&flagDBURL, "db-url", "", "PostgreSQL connection string for answer history")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
