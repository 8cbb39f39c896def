package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/xhad/docqa/pkg/assistant"
	"github.com/xhad/docqa/pkg/fetcher"
)

var chatFiles []string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question loop over a set of PDF files",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, closeHistory, err := newAssistant(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeHistory()

		f := newFetcher(cfg.Fetch)
		session := assistant.NewSession()
		if len(chatFiles) > 0 {
			if err := loadDocuments(ctx, f, session.Documents, chatFiles); err != nil {
				return err
			}
		}

		return runChat(ctx, a, f, session, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

const chatHelp = `Commands:
  :load <file|url>...  add documents
  :remove <name>       remove a document
  :docs                list loaded documents
  :history             show previous answers
  :clear               clear history
  exit                 quit`

func runChat(ctx context.Context, a *assistant.Assistant, f *fetcher.Fetcher, session *assistant.Session, in io.Reader, out io.Writer) error {
	color.New(color.FgCyan).Fprintln(out, "\nAssistente de documentos (type 'exit' to quit, ':help' for commands)")

	scanner := bufio.NewScanner(in)
	userPrompt := color.New(color.FgGreen)
	assistantPrompt := color.New(color.FgCyan)
	errorText := color.New(color.FgRed)
	okText := color.New(color.FgGreen)

	for {
		userPrompt.Fprint(out, "\nYou: ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") {
			break
		}

		if strings.HasPrefix(line, ":") {
			fields := strings.Fields(line)
			switch fields[0] {
			case ":help":
				fmt.Fprintln(out, chatHelp)
			case ":load":
				if err := loadDocuments(ctx, f, session.Documents, fields[1:]); err != nil {
					errorText.Fprintf(out, "%v\n", err)
					continue
				}
				okText.Fprintf(out, "✓ %d documents loaded\n", session.Documents.Len())
			case ":remove":
				if len(fields) < 2 || !session.Documents.Remove(fields[1]) {
					errorText.Fprintln(out, "no such document")
					continue
				}
				okText.Fprintf(out, "✓ removed %s\n", fields[1])
			case ":docs":
				for _, name := range session.Documents.Names() {
					fmt.Fprintln(out, "  "+name)
				}
			case ":history":
				exchanges, err := a.History(ctx, session, 0)
				if err != nil {
					errorText.Fprintf(out, "Error: %v\n", err)
					continue
				}
				for _, e := range exchanges {
					userPrompt.Fprintf(out, "\nYou: %s\n", e.Question)
					assistantPrompt.Fprintf(out, "Assistant: %s\n", e.Answer)
				}
			case ":clear":
				if err := a.ClearHistory(ctx, session); err != nil {
					errorText.Fprintf(out, "Error: %v\n", err)
					continue
				}
				okText.Fprintln(out, "✓ history cleared")
			default:
				errorText.Fprintf(out, "unknown command %s\n", fields[0])
			}
			continue
		}

		answer, err := a.Ask(ctx, session, line)
		if err != nil {
			errorText.Fprintf(out, "Error: %v\n", err)
			continue
		}
		assistantPrompt.Fprintf(out, "\nAssistant: %s\n", answer.Text)
	}

	return scanner.Err()
}

func init() {
	chatCmd.Flags().StringArrayVarP(&chatFiles, "file", "f", nil, "PDF file or URL to load at start (repeatable)")
	rootCmd.AddCommand(chatCmd)
}
