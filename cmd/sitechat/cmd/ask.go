package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <url-or-path> <question...>",
	Short: "Load a document and answer one question",
	Long: `Load a web page or local files, answer a single question and print the
answer to stdout. Logs go to stderr.

Examples:
  sitechat ask https://example.com/faq what is the refund policy
  sitechat ask "docs/*.md,README.md" how do I configure the ranker`,
	Args: cobra.MinimumNArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd.ErrOrStderr(), "")
	},
	RunE: runAsk,
}

var askSummary bool

func init() {
	askCmd.Flags().BoolVar(&askSummary, "summary", false, "Print the document summary before the answer")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	svc, err := newChatService(cfg)
	if err != nil {
		return err
	}
	report, err := svc.Load(ctx, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if askSummary && report.Summary != "" {
		fmt.Fprintf(out, "Summary: %s\n\n", report.Summary)
	}
	answer, err := svc.Ask(ctx, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(out, answer)
	return nil
}
