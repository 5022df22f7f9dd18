package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/yildizm/loglens/internal/formatter"
	"github.com/yildizm/loglens/internal/logfile"
	"github.com/yildizm/loglens/internal/logger"
	"github.com/yildizm/loglens/internal/session"
)

// errAnalysisFailed is returned after the failure report has been written
var errAnalysisFailed = errors.New("analysis failed")

type analyzeOptions struct {
	output     string
	outputFile string
	questions  []string
	quiet      bool
}

func newAnalyzeCommand(s *state) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a log file without the interactive UI",
		Long: `Upload a log file to the analysis backend and print the dashboard and the
summary report.

The run goes through the same session as the interactive UI, so progress
steps are printed to stderr while the upload is in flight. Questions given
with --question are asked once the analysis is done and their answers are
included in the report.`,
		Example: `  loglens analyze app.log
  loglens analyze --output json app.log > report.json
  loglens analyze -q "what caused the timeouts?" app.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("output") {
				opts.output = s.cfg.Output.DefaultFormat
			}
			return s.runAnalyze(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "output format (text, json, markdown, csv)")
	cmd.Flags().StringVar(&opts.outputFile, "output-file", "", "save output to file instead of stdout")
	cmd.Flags().StringArrayVarP(&opts.questions, "question", "q", nil, "question to ask after the analysis (repeatable)")
	cmd.Flags().BoolVar(&opts.quiet, "quiet", false, "do not print progress steps")

	return cmd
}

func (s *state) runAnalyze(cmd *cobra.Command, path string, opts *analyzeOptions) error {
	f, err := formatter.New(opts.output, formatter.Options{
		Color: opts.outputFile == "" && !color.NoColor,
		Emoji: s.cfg.Output.Emoji,
	})
	if err != nil {
		return err
	}

	file, err := logfile.Load(path)
	if err != nil {
		return err
	}
	preview, err := logfile.Inspect(file.Data, logfile.FormatAuto)
	if err != nil {
		s.log.Debug("preview unavailable", logger.Error(err))
		preview = nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	machine, err := s.newMachine()
	if err != nil {
		return err
	}
	defer machine.Close()

	machine.SelectFile(file)
	start, err := machine.StartAnalysis()
	if err != nil {
		return err
	}

	progress := &progressPrinter{w: cmd.ErrOrStderr(), quiet: opts.quiet}
	if err := session.Drive(ctx, machine, start, progress.observe(machine)); err != nil {
		return fmt.Errorf("analysis interrupted: %w", err)
	}

	if machine.Status() == session.StatusAnalyzed {
		for _, q := range opts.questions {
			if err := session.Drive(ctx, machine, machine.SubmitQuery(q), nil); err != nil {
				return fmt.Errorf("query interrupted: %w", err)
			}
		}
	}

	vm := machine.Snapshot()
	out, err := f.Format(formatter.FromViewModel(vm, preview))
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}
	if err := writeOutput(cmd.OutOrStdout(), opts.outputFile, out); err != nil {
		return err
	}

	if vm.Status == session.StatusFailed {
		return fmt.Errorf("%w: %s", errAnalysisFailed, vm.Error)
	}
	return nil
}

// progressPrinter echoes newly completed progress steps
type progressPrinter struct {
	w       io.Writer
	quiet   bool
	printed int
}

func (p *progressPrinter) observe(m *session.Machine) func(tea.Msg) {
	done := color.New(color.FgGreen)
	return func(msg tea.Msg) {
		if p.quiet {
			return
		}
		vm := m.Snapshot()
		steps := vm.Progress
		if vm.Uploading() {
			steps = vm.CompletedSteps()
		}
		for ; p.printed < len(steps); p.printed++ {
			fmt.Fprintf(p.w, "%s %s\n", done.Sprint("✓"), steps[p.printed])
		}
	}
}

// writeOutput writes data to path, or to w when path is empty
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
