package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/yildizm/loglens/internal/config"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".loglens.yaml"

// newConfigCommand creates the config command with subcommands. Its
// subcommands load the configuration themselves so that a broken file can
// still be reported by validate.
func newConfigCommand(s *state) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage loglens configuration",
		Long: `Manage loglens configuration files and settings.

The config command provides subcommands for initializing, viewing,
validating, and locating configuration files.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(s))
	configCmd.AddCommand(newConfigValidateCommand(s))
	configCmd.AddCommand(newConfigPathCommand())

	return configCmd
}

// newConfigInitCommand creates the config init subcommand
func newConfigInitCommand() *cobra.Command {
	var (
		outputPath string
		force      bool
	)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default values",
		Example: `  # Create config in current directory
  loglens config init

  # Create config at specific path
  loglens config init --output ~/.config/loglens/config.yaml

  # Overwrite existing config
  loglens config init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath == "" {
				outputPath = defaultConfigFile
			}
			if !force && fileExists(outputPath) {
				return fmt.Errorf("config file already exists at %s (use --force to overwrite)", outputPath)
			}

			if err := config.Save(config.DefaultConfig(), outputPath); err != nil {
				return err
			}

			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Configuration file created at: %s\n", outputPath)
			return nil
		},
	}

	initCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output path for config file (default: .loglens.yaml)")
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing config file")

	return initCmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand(s *state) *cobra.Command {
	var format string

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the effective configuration after loading defaults, config files,
environment variable overrides and command line flags.`,
		Example: `  loglens config show
  loglens config show --format json
  loglens --config /path/to/config.yaml config show`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.setup(cmd); err != nil {
				return err
			}

			var (
				data []byte
				err  error
			)
			switch format {
			case "json":
				data, err = json.MarshalIndent(s.cfg, "", "  ")
				data = append(data, '\n')
			case "yaml":
				data, err = yaml.Marshal(s.cfg)
			default:
				return fmt.Errorf("unsupported format: %s (use json or yaml)", format)
			}
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}

			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	showCmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format (yaml, json)")
	return showCmd
}

// newConfigValidateCommand creates the config validate subcommand
func newConfigValidateCommand(s *state) *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate configuration file",
		Long: `Load a configuration file, or the files on the search path, and check it
for YAML syntax errors and invalid values.`,
		Example: `  loglens config validate
  loglens config validate ./ci/loglens.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := s.opts.cfgFile
			if len(args) == 1 {
				path = args[0]
			}

			out := cmd.OutOrStdout()
			cfg, err := config.NewLoader().LoadConfig(path)
			if err != nil {
				color.New(color.FgRed).Fprintln(out, "Configuration is invalid:")
				fmt.Fprintf(out, "   %v\n", err)
				return err
			}

			color.New(color.FgGreen).Fprintln(out, "Configuration is valid")
			fmt.Fprintf(out, "   Server: %s (timeout %s)\n", cfg.Server.URL, cfg.Server.Timeout)
			fmt.Fprintf(out, "   Progress: %d steps every %s\n", len(cfg.Progress.Steps), cfg.Progress.Interval)
			fmt.Fprintf(out, "   Output Format: %s\n", cfg.Output.DefaultFormat)
			return nil
		},
	}

	return validateCmd
}

// newConfigPathCommand creates the config path subcommand
func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file search paths",
		Long: `Display the list of paths loglens searches for configuration files,
in priority order, and which of them exist.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Configuration file search paths (in priority order):")

			for i, path := range config.GetConfigPaths() {
				status := "not found"
				if fileExists(path) {
					status = "exists"
				}
				fmt.Fprintf(out, "  %d. %s (%s)\n", i+1, path, status)
			}

			fmt.Fprintln(out)
			if current, found := config.FindConfigFile(); found {
				fmt.Fprintf(out, "Current config file: %s\n", current)
			} else {
				fmt.Fprintln(out, "No config file found, using defaults")
			}
			fmt.Fprintf(out, "Environment variables with the %s prefix override file settings\n", config.EnvPrefix)
		},
	}
}

func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
