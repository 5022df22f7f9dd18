package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/yildizm/loglens/internal/api"
	"github.com/yildizm/loglens/internal/logfile"
)

// FileChangedMsg asks the app to load path, select it and analyze it.
// Watch mode sends one on every write to the watched file.
type FileChangedMsg struct {
	Path string
}

// fileLoadedMsg carries a file read from disk
type fileLoadedMsg struct {
	file    api.LogFile
	preview *logfile.Preview
	analyze bool
}

// fileErrorMsg reports a file that could not be read
type fileErrorMsg struct {
	path string
	err  error
}

// loadFileCmd reads path off the event loop and previews it locally
func loadFileCmd(path string, analyze bool) tea.Cmd {
	return func() tea.Msg {
		file, err := logfile.Load(path)
		if err != nil {
			return fileErrorMsg{path: path, err: err}
		}
		// the preview is informational only; an unparseable file still uploads
		preview, _ := logfile.Inspect(file.Data, logfile.FormatAuto)
		return fileLoadedMsg{file: file, preview: preview, analyze: analyze}
	}
}
