package index

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"eip_explorer/proposal"
)

// Watch reloads a family catalog whenever the offline builder rewrites its
// JSON file. The builder writes via tmp+rename, so a Create or Write event
// on a catalog file means a complete new snapshot is in place.
func (ix *Index) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	byName := make(map[string]proposal.Family, len(familyFiles))
	for fam, file := range familyFiles {
		byName[file] = fam
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-watcher.Events:
				if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				fam, ok := byName[filepath.Base(evt.Name)]
				if !ok {
					continue
				}
				if err := ix.reload(fam); err != nil {
					log.Printf("index: reload %s failed: %v", fam, err)
				}
			case err := <-watcher.Errors:
				log.Printf("index: watcher error: %v", err)
			}
		}
	}()
	return watcher.Add(ix.dir)
}
