package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/yildizm/loglens/internal/logger"
	"github.com/yildizm/loglens/internal/ui"
)

func newWatchCommand(s *state) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-analyze a log file every time it changes",
		Long: `Open the interactive UI on a file and analyze it again whenever it is
written to. A change that arrives while an analysis is still running
replaces that analysis.

Changes closer together than --debounce are folded into one.`,
		Example: `  loglens watch app.log
  loglens watch --debounce 2s /var/log/app.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("debounce") {
				debounce = s.cfg.Watch.Debounce
			}
			return s.runWatch(cmd, args[0], debounce)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "quiet period before re-analyzing")
	return cmd
}

func (s *state) runWatch(cmd *cobra.Command, filename string, debounce time.Duration) error {
	if err := validateWatchFilePath(filename); err != nil {
		return fmt.Errorf("invalid file path: %w", err)
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filename)
	}

	w, err := newFileWatcher(filename, debounce, s.log.WithComponent("watch"))
	if err != nil {
		return err
	}
	defer w.close()

	p, cleanup, err := s.newProgram(filename, true)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go w.run(ctx, func() { p.Send(ui.FileChangedMsg{Path: filename}) })

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run interactive UI: %w", err)
	}
	return nil
}

// fileWatcher reports debounced writes to a single file. The parent
// directory is watched so that editors replacing the file are noticed too.
type fileWatcher struct {
	watcher  *fsnotify.Watcher
	target   string
	debounce time.Duration
	log      *logger.Logger
}

func newFileWatcher(filename string, debounce time.Duration, log *logger.Logger) (*fileWatcher, error) {
	target, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		cleanupWatcher(watcher)
		return nil, fmt.Errorf("failed to watch file: %w", err)
	}

	return &fileWatcher{watcher: watcher, target: target, debounce: debounce, log: log}, nil
}

// run calls onChange after each burst of writes until ctx is done or the
// watcher is closed.
func (w *fileWatcher) run(ctx context.Context, onChange func()) {
	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	fire := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			if ctx.Err() == nil {
				w.log.Debug("file changed", logger.F("path", w.target))
				onChange()
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				fire()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", logger.Error(err))
		}
	}
}

// relevant reports whether event changes the content of the watched file
func (w *fileWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func (w *fileWatcher) close() {
	cleanupWatcher(w.watcher)
}

// validateWatchFilePath validates that a file path is safe to watch
func validateWatchFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	if strings.HasPrefix(absPath, "/proc/") || strings.HasPrefix(absPath, "/sys/") || strings.HasPrefix(absPath, "/dev/") {
		return fmt.Errorf("access to system files not allowed")
	}
	return nil
}

func cleanupWatcher(watcher *fsnotify.Watcher) {
	if err := watcher.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close watcher: %v\n", err)
	}
}
