package main

import (
	"os"

	"qachat/cmd/qachat/chat"
	"qachat/cmd/qachat/ui"
	"qachat/internal/controller"
	"qachat/internal/logging"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// plainMode forces line mode even on a terminal.
var plainMode bool

// runChat starts the interactive chat: the full-screen interface on a
// terminal, line mode otherwise.
func runChat(cmd *cobra.Command, args []string) error {
	client, err := newBackend(cfg)
	if err != nil {
		return err
	}
	policy, err := controller.ParseResolvePolicy(cfg.UI.ResolvePolicy)
	if err != nil {
		return err
	}

	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	if plainMode || !isTerminal(in) || !isTerminal(out) {
		return runPlain(cmd.Context(), in, out, client, policy)
	}

	return chat.Run(chat.Config{
		Backend:    client,
		BackendURL: client.URL(),
		Policy:     policy,
		Styles:     ui.NewStyles(ui.ThemeByName(cfg.UI.Theme)),
		Markdown:   cfg.UI.Markdown,
		CharLimit:  cfg.UI.CharLimit,
		Logger:     logging.Get(logging.CategoryUI),
	})
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

