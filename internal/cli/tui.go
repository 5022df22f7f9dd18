package cli

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/yildizm/loglens/internal/ui"
)

func newTUICommand(s *state) *cobra.Command {
	var analyze bool

	cmd := &cobra.Command{
		Use:   "tui [file]",
		Short: "Open the interactive UI",
		Long: `Open the interactive terminal UI.

With a file argument the file is selected, and with --analyze (the default)
its analysis starts right away. Press a to (re)analyze, 1-3 or tab to switch
views, c to chat, and q to quit.`,
		Example: `  loglens tui app.log
  loglens tui --analyze=false app.log
  loglens --log-file /tmp/loglens.log tui app.log`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return s.runTUI(path, analyze && path != "")
		},
	}

	cmd.Flags().BoolVar(&analyze, "analyze", true, "start analyzing the file immediately")
	return cmd
}

// runTUI runs the interactive UI until the user quits
func (s *state) runTUI(path string, analyze bool) error {
	p, cleanup, err := s.newProgram(path, analyze)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run interactive UI: %w", err)
	}
	return nil
}

// newProgram prepares the bubbletea program and redirects logging away from
// the terminal while it owns the screen.
func (s *state) newProgram(path string, analyze bool) (*tea.Program, func(), error) {
	closeLog, err := s.redirectLog()
	if err != nil {
		return nil, nil, err
	}

	machine, err := s.newMachine()
	if err != nil {
		closeLog()
		return nil, nil, err
	}

	opts := []ui.Option{ui.WithLogger(s.log.WithComponent("ui"))}
	if path != "" {
		opts = append(opts, ui.WithFile(path, analyze))
	}
	app := ui.NewApp(machine, opts...)

	p := tea.NewProgram(app, tea.WithAltScreen())

	cleanup := func() {
		machine.Close()
		closeLog()
	}
	return p, cleanup, nil
}

// redirectLog sends log output to --log-file, or discards it
func (s *state) redirectLog() (func(), error) {
	if s.opts.logFile == "" {
		s.log.SetOutput(io.Discard)
		return func() {}, nil
	}

	// #nosec G304 - path comes from the user's own flag
	f, err := os.OpenFile(s.opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	s.log.SetOutput(f)
	return func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
		}
	}, nil
}
