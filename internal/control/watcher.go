package control

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher surfaces control-file changes as reload requests. It watches the
// directory rather than the file itself because the writer replaces the file
// by rename. Like the SIGUSR1 nudge this is an optimization; the monitor
// loop re-reads the file each tick regardless.
type Watcher struct {
	fsw  *fsnotify.Watcher
	path string
	log  *zap.Logger

	// Changed receives one value per observed replacement of the control
	// file. The channel is never closed while the watcher runs.
	Changed chan struct{}
}

func NewWatcher(path string, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}
	w := &Watcher{
		fsw:     fsw,
		path:    path,
		log:     log,
		Changed: make(chan struct{}, 1),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	base := filepath.Base(w.path)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			w.log.Debug("control_file_changed", zap.String("op", ev.Op.String()))
			select {
			case w.Changed <- struct{}{}:
			default:
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Debug("control_watch_error", zap.Error(err))
		}
	}
}

func (w *Watcher) Close() error {
	return w.fsw.Close()
}
