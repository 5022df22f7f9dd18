package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/yildizm/loglens/internal/api"
)

func newAskCommand(s *state) *cobra.Command {
	var showSources bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask one question about the most recently analyzed log",
		Long: `Send a single question to the backend and print the answer.

The backend answers about the last file uploaded to it, so run analyze (or
the interactive UI) first.`,
		Example: `  loglens ask "why did the payments fail?"
  loglens ask --sources "which users could not log in?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				return fmt.Errorf("question must not be empty")
			}

			client, err := s.newClient()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			resp, err := client.SubmitQuery(ctx, question)
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}
			printAnswer(cmd, resp, showSources)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showSources, "sources", false, "print the log lines the answer is based on")
	return cmd
}

func printAnswer(cmd *cobra.Command, resp *api.QueryResponse, showSources bool) {
	out := cmd.OutOrStdout()
	heading := color.New(color.FgCyan, color.Bold)
	faint := color.New(color.Faint)

	fmt.Fprintln(out, resp.Answer)

	if len(resp.RelevantLogs) > 0 {
		fmt.Fprintln(out)
		if showSources {
			heading.Fprintf(out, "Sources (%d)\n", len(resp.RelevantLogs))
			for _, line := range resp.RelevantLogs {
				fmt.Fprintf(out, "  %s\n", line)
			}
		} else {
			faint.Fprintf(out, "%d source lines (use --sources to show them)\n", len(resp.RelevantLogs))
		}
	}

	if len(resp.SuggestedFollowup) > 0 {
		fmt.Fprintln(out)
		heading.Fprintln(out, "Suggested follow-ups")
		for i, q := range resp.SuggestedFollowup {
			fmt.Fprintf(out, "  %d. %s\n", i+1, q)
		}
	}
}
