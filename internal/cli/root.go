package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/yildizm/loglens/internal/api"
	"github.com/yildizm/loglens/internal/config"
	"github.com/yildizm/loglens/internal/logger"
	"github.com/yildizm/loglens/internal/session"
	"github.com/yildizm/loglens/internal/ui"
)

// globalOptions holds the persistent flags
type globalOptions struct {
	cfgFile string
	server  string
	verbose bool
	noColor bool
	noEmoji bool
	logFile string
}

// state is shared by every subcommand of one root command
type state struct {
	opts globalOptions
	cfg  *config.Config
	log  *logger.Logger
}

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	s := &state{}

	rootCmd := &cobra.Command{
		Use:   "loglens [file]",
		Short: "Terminal client for log analysis",
		Long: `loglens uploads a log file to an analysis backend and lets you explore the
result: a metrics dashboard, a summary report of the top incidents, and a chat
for asking questions about the logs.

Run it with a file to open the interactive UI and start the analysis, or use
the analyze and ask subcommands for scripting.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return s.runTUI(path, path != "")
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&s.opts.cfgFile, "config", "c", "", "config file path")
	flags.StringVarP(&s.opts.server, "server", "s", "", "analysis backend URL (overrides server.url)")
	flags.BoolVarP(&s.opts.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&s.opts.noColor, "no-color", false, "disable colored output")
	flags.BoolVar(&s.opts.noEmoji, "no-emoji", false, "disable emoji output (useful for Windows terminals)")
	flags.StringVar(&s.opts.logFile, "log-file", "", "write logs to this file while the interactive UI runs")

	rootCmd.AddCommand(newTUICommand(s))
	rootCmd.AddCommand(newAnalyzeCommand(s))
	rootCmd.AddCommand(newAskCommand(s))
	rootCmd.AddCommand(newWatchCommand(s))
	rootCmd.AddCommand(newServeStubCommand(s))
	rootCmd.AddCommand(newConfigCommand(s))
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

// setup loads the configuration and applies the persistent flags on top
func (s *state) setup(cmd *cobra.Command) error {
	cfg, err := config.NewLoader().LoadConfig(s.opts.cfgFile)
	if err != nil {
		return err
	}

	if s.opts.server != "" {
		cfg.Server.URL = s.opts.server
	}
	if s.opts.verbose {
		cfg.Output.Verbose = true
	}
	if s.opts.noColor {
		cfg.Output.ColorMode = "never"
	}
	// Auto-disable emojis on Windows if not explicitly set
	if s.opts.noEmoji || (runtime.GOOS == "windows" && !cmd.Flags().Changed("no-emoji")) {
		cfg.Output.Emoji = false
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	s.cfg = cfg

	ui.ApplyColorMode(cfg.Output.ColorMode)
	ui.SetThemeByName(cfg.Output.Theme)
	color.NoColor = !s.useColor(cmd.OutOrStdout())

	s.log = logger.NewWithCallback("loglens", func() bool { return s.cfg.Output.Verbose })
	s.log.SetOutput(cmd.ErrOrStderr())
	s.log.Debug("configuration loaded", logger.F("server", cfg.Server.URL))
	return nil
}

// useColor resolves the color mode for w
func (s *state) useColor(w io.Writer) bool {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return s.cfg.UseColor(tty && os.Getenv("NO_COLOR") == "")
}

// newClient builds the API client for the configured backend
func (s *state) newClient() (*api.Client, error) {
	return api.NewClient(s.cfg.Server.URL,
		api.WithTimeout(s.cfg.Server.Timeout),
		api.WithLogger(s.log.WithComponent("api")),
	)
}

// newMachine builds a session bound to the configured backend
func (s *state) newMachine() (*session.Machine, error) {
	client, err := s.newClient()
	if err != nil {
		return nil, err
	}
	return session.New(client,
		session.WithSteps(s.cfg.Progress.Steps),
		session.WithInterval(s.cfg.Progress.Interval),
		session.WithLogger(s.log.WithComponent("session")),
	), nil
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version number, build commit, date, and runtime information",
		Run: func(cmd *cobra.Command, args []string) {
			if version == "dev" || version == "" {
				version = "development"
			}
			if commit == "none" || commit == "" {
				commit = "local-build"
			}
			if date == "unknown" || date == "" {
				date = "local-build"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "loglens %s (%s) built on %s\n", version, commit, date)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
