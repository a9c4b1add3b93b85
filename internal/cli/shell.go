package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func (a *App) shellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively, keeping the session between them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runShell(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

// runShell reads a line at a time, runs it as a command line and reports
// failures without leaving. It returns on EOF, "exit" or "quit".
func (a *App) runShell(ctx context.Context, w io.Writer) error {
	fmt.Fprintln(w, "NewsInsight CLI (type 'help' for commands)")

	for {
		if ctx.Err() != nil {
			return nil
		}

		fmt.Fprintf(w, "newsinsight%s> ", a.status())
		line, err := a.reader.ReadString('\n')
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(w)
				return nil
			}
			return err
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return nil
		case "shell":
			fmt.Fprintln(w, "Already in the shell")
			continue
		}

		if err := a.Execute(ctx, parts); err != nil {
			fmt.Fprintln(w, "Error:", err)
		}
	}
}

// status is shown in the prompt.
func (a *App) status() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.signedInAs == "" {
		return ""
	}
	return " (" + a.signedInAs + ")"
}

func (a *App) setSignedInAs(email string) {
	a.mu.Lock()
	a.signedInAs = email
	a.mu.Unlock()
}
