package citation

import (
	"fmt"
	"strings"

	"gopkg.in/fsnotify.v1"
)

// dirWatcher tracks a running fsnotify watch over a rules directory.
type dirWatcher struct {
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
}

// OnChangeFunc is called after the registry reloads in response to a
// rules-directory event. The event argument is "create", "modify", or
// "remove".
type OnChangeFunc func(event string, path string)

// OnErrorFunc is called for failures observed while watching: watcher
// errors and rule files that fail to load.
type OnErrorFunc func(err error)

// SetOnError installs the watch error callback. Without one, watch
// failures are dropped.
func (r *Registry) SetOnError(onError OnErrorFunc) {
	r.mu.Lock()
	r.onError = onError
	r.mu.Unlock()
}

func (r *Registry) reportWatchError(err error) {
	r.mu.RLock()
	onError := r.onError
	r.mu.RUnlock()
	if onError != nil {
		onError(err)
	}
}

// Watch starts watching the configured rules directory for changes. Rule
// files that are created or modified are loaded on top of the current
// table; removed files trigger a full reload. A registry can run at most
// one watch at a time.
func (r *Registry) Watch(onChange OnChangeFunc) error {
	r.mu.Lock()
	dir := r.dir
	running := r.watcher != nil
	r.mu.Unlock()

	if dir == "" {
		return fmt.Errorf("no rules directory configured for watching")
	}
	if running {
		return fmt.Errorf("registry is already watching %s", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	dw := &dirWatcher{
		watcher:  watcher,
		stopChan: make(chan struct{}),
	}

	r.mu.Lock()
	r.watcher = dw
	r.mu.Unlock()

	go r.watchLoop(dw, onChange)

	if err := watcher.Add(dir); err != nil {
		r.StopWatch()
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}
	return nil
}

// watchLoop handles file system events until StopWatch is called.
func (r *Registry) watchLoop(dw *dirWatcher, onChange OnChangeFunc) {
	for {
		select {
		case <-dw.stopChan:
			return

		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}

			if !strings.HasSuffix(event.Name, ".yaml") && !strings.HasSuffix(event.Name, ".yml") {
				continue
			}

			switch {
			case event.Op&fsnotify.Create == fsnotify.Create:
				r.handleRuleFileChange(event.Name, "create", onChange)

			case event.Op&fsnotify.Write == fsnotify.Write:
				r.handleRuleFileChange(event.Name, "modify", onChange)

			case event.Op&fsnotify.Remove == fsnotify.Remove,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				r.handleRuleFileRemove(event.Name, onChange)
			}

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			r.reportWatchError(fmt.Errorf("watching rules directory: %w", err))
		}
	}
}

// handleRuleFileChange loads a created or modified rule file.
func (r *Registry) handleRuleFileChange(path, eventType string, onChange OnChangeFunc) {
	if err := r.LoadFile(path); err != nil {
		r.reportWatchError(err)
		return
	}
	if onChange != nil {
		onChange(eventType, path)
	}
}

// handleRuleFileRemove reloads the whole table since files are not tracked
// back to the rules they contributed.
func (r *Registry) handleRuleFileRemove(path string, onChange OnChangeFunc) {
	if err := r.Reload(); err != nil {
		r.reportWatchError(err)
		return
	}
	if onChange != nil {
		onChange("remove", path)
	}
}

// StopWatch stops watching the rules directory.
func (r *Registry) StopWatch() {
	r.mu.Lock()
	dw := r.watcher
	r.watcher = nil
	r.mu.Unlock()

	if dw == nil {
		return
	}
	close(dw.stopChan)
	dw.watcher.Close()
}
