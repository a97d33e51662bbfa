package rules

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/bearslyricattack/CompliAd/pkg/logger"
)

type watcher struct {
	fw   *fsnotify.Watcher
	done chan struct{}
}

// Watch starts a filesystem watcher over the rule tree. Any change to a
// rule file invalidates the whole cache; the next Get reloads.
func (r *Repository) Watch() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	r.watcher = &watcher{fw: fw, done: make(chan struct{})}

	if err := addRecursive(fw, r.root); err != nil {
		fw.Close()
		r.watcher = nil
		return err
	}

	go r.watchLoop()
	return nil
}

// Close stops the watcher if one is running.
func (r *Repository) Close() error {
	if r.watcher == nil {
		return nil
	}
	close(r.watcher.done)
	return r.watcher.fw.Close()
}

func (r *Repository) watchLoop() {
	for {
		select {
		case event, ok := <-r.watcher.fw.Events:
			if !ok {
				return
			}
			if event.Op.Has(fsnotify.Create) {
				// New directories must be watched too.
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addRecursive(r.watcher.fw, event.Name)
				}
			}
			if strings.HasSuffix(event.Name, ".json") || event.Op.Has(fsnotify.Create) {
				r.log.Info("Rule pack changed, reloading", logger.Fields{
					"path": event.Name,
					"op":   event.Op.String(),
				})
				r.Invalidate()
			}
		case err, ok := <-r.watcher.fw.Errors:
			if !ok {
				return
			}
			r.log.Warn("Rule watcher error", logger.Fields{"error": err.Error()})
		case <-r.watcher.done:
			return
		}
	}
}

func addRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
}
