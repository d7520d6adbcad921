package play

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/gigurra/patviz/cmd/common/pattern"
)

// datasetChangedMsg carries a re-parsed dataset file, or the reason it
// could not be parsed. stopped means the watch itself failed and is not
// re-armed.
type datasetChangedMsg struct {
	path    string
	dataset *pattern.Dataset
	err     error
	stopped bool
}

// watchDatasetCmd waits for the next write to path and returns the parsed
// result. The parent directory is watched because editors often replace
// the file rather than write it in place.
func watchDatasetCmd(path string) tea.Cmd {
	return func() tea.Msg {
		stopped := func(err error) tea.Msg {
			return datasetChangedMsg{path: path, err: fmt.Errorf("watch stopped: %w", err), stopped: true}
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return stopped(err)
		}
		defer watcher.Close()

		abs, err := filepath.Abs(path)
		if err != nil {
			return stopped(err)
		}
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return stopped(err)
		}

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return stopped(fmt.Errorf("watcher closed"))
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				ds, err := pattern.ParseFile(abs)
				return datasetChangedMsg{path: path, dataset: ds, err: err}
			case err, ok := <-watcher.Errors:
				if !ok {
					return stopped(fmt.Errorf("watcher closed"))
				}
				// event queue overflow and the like; the next Cmd watches afresh
				return datasetChangedMsg{path: path, err: err}
			}
		}
	}
}
