package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"sitechat/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat [url-or-path]",
	Short: "Start the interactive chat UI",
	Long: `Start the terminal chat UI. Paste a URL or type /load <target> to index a
document, /clear to wipe the transcript, anything else to ask a question.
Logs go to ~/.config/sitechat/sitechat.log unless logging.file is set.

Examples:
  sitechat chat
  sitechat chat https://example.com/article`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(nil, defaultLogFile())
	},
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	svc, err := newChatService(cfg)
	if err != nil {
		return err
	}
	target := ""
	if len(args) == 1 {
		target = args[0]
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info().Str("target", target).Msg("chat started")
	m := tui.New(ctx, svc, target)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
