package server

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"sashboard/internal/logging"
)

const defaultWatchDebounce = 500 * time.Millisecond

// FileWatcher watches the trade-history spreadsheet and fires a debounced
// callback on change. The parent directory is watched because exports and
// editors replace the file rather than writing it in place.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange func(path string)
	logger   *logging.Logger

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

func WatchFile(path string, debounce time.Duration, onChange func(path string), logger *logging.Logger) (*FileWatcher, error) {
	if debounce <= 0 {
		debounce = defaultWatchDebounce
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	fw := &FileWatcher{
		watcher:  watcher,
		path:     path,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}
	go fw.loop()
	return fw, nil
}

func (fw *FileWatcher) loop() {
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			if fw.logger != nil {
				fw.logger.Warn("file watcher error", map[string]string{"error": err.Error()})
			}
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if !strings.EqualFold(filepath.Base(event.Name), filepath.Base(fw.path)) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.closed {
		return
	}
	if fw.timer == nil {
		fw.timer = time.AfterFunc(fw.debounce, fw.flush)
		return
	}
	fw.timer.Reset(fw.debounce)
}

func (fw *FileWatcher) flush() {
	fw.mu.Lock()
	if fw.closed {
		fw.mu.Unlock()
		return
	}
	fw.timer = nil
	callback := fw.onChange
	path := fw.path
	fw.mu.Unlock()

	if callback != nil {
		callback(path)
	}
}

func (fw *FileWatcher) Close() error {
	if fw == nil {
		return nil
	}
	fw.mu.Lock()
	fw.closed = true
	if fw.timer != nil {
		fw.timer.Stop()
		fw.timer = nil
	}
	fw.mu.Unlock()
	return fw.watcher.Close()
}
