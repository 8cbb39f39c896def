package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/xhad/docqa/pkg/assistant"
	"github.com/xhad/docqa/pkg/prompt"
)

var (
	askFiles    []string
	askShowPlan bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question about the given PDF files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, closeHistory, err := newAssistant(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeHistory()

		session := assistant.NewSession()
		if err := loadDocuments(ctx, newFetcher(cfg.Fetch), session.Documents, askFiles); err != nil {
			return err
		}

		spinner := getSpinner(" Processando documentos...")
		answer, err := a.Ask(ctx, session, strings.Join(args, " "))
		spinner.Finish()
		if err != nil {
			color.Red("Error: %v\n", err)
			return err
		}

		out := cmd.OutOrStdout()
		if askShowPlan {
			color.New(color.FgYellow).Fprintln(out, "Plano:")
			fmt.Fprintln(out, prompt.FormatPlan(answer.Plan))
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, answer.Text)
		return nil
	},
}

func init() {
	askCmd.Flags().StringArrayVarP(&askFiles, "file", "f", nil, "PDF file or URL to answer from (repeatable)")
	askCmd.Flags().BoolVar(&askShowPlan, "show-plan", false, "print the generated plan before the answer")
	rootCmd.AddCommand(askCmd)
}
