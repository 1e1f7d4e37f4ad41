package translate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the catalog from dir whenever one of its YAML files is
// written, created, removed or renamed. It blocks until ctx is done. Failed
// reloads are logged and keep the previous messages.
func (c *Catalog) Watch(ctx context.Context, dir string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("translate: watch: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("translate: watch %s: %w", dir, err)
	}
	fsys := os.DirFS(dir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			if err := c.ReloadFS(ctx, fsys, "."); err != nil {
				c.logger.Error("translate: reload failed", "dir", dir, "file", ev.Name, "error", err)
				continue
			}
			c.logger.Info("translate: catalog reloaded", "dir", dir, "file", filepath.Base(ev.Name), "op", ev.Op.String())
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("translate: watcher error", "dir", dir, "error", err)
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	switch filepath.Ext(ev.Name) {
	case ".yaml", ".yml":
	default:
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}
