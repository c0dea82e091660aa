// Package filesource exposes a file's contents as a source.Binding so its
// edits can be tracked and undone.
package filesource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fakeyudi/refhistory/internal/source"
	"github.com/fsnotify/fsnotify"
)

// ErrNotRegular is returned by Open for directories, devices and the like.
var ErrNotRegular = errors.New("not a regular file")

// File is a source.Binding over the contents of a file.
//
// Get returns the contents last read or written. External edits become
// visible, and notify subscribers, only when Sync is called; Watch reports
// when that is worth doing. File is not safe for concurrent use.
type File struct {
	path string
	mode os.FileMode
	ref  *source.Ref[string]
	log  *slog.Logger

	lastErr error
}

var (
	_ source.Binding[string] = (*File)(nil)
	_ source.Writer[string]  = (*File)(nil)
)

// Option configures a File.
type Option func(*File)

// WithLogger sets the logger used for write failures.
func WithLogger(l *slog.Logger) Option {
	return func(f *File) { f.log = l }
}

// Open reads path and returns a File tracking it.
func Open(path string, opts ...Option) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotRegular)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	f := &File{
		path: abs,
		mode: info.Mode().Perm(),
		ref:  source.NewRef(string(data)),
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Path returns the absolute path of the file.
func (f *File) Path() string {
	return f.path
}

// Get returns the cached contents.
func (f *File) Get() string {
	return f.ref.Get()
}

// Set writes value to disk and notifies subscribers if the contents changed.
// A failed write leaves the cache untouched; the error is logged and kept for
// Err.
func (f *File) Set(value string) {
	if err := f.Write(value); err != nil {
		f.log.Warn("file write failed", "path", f.path, "error", err)
	}
}

// Write is Set with the error returned. History controllers write through it
// so a failed undo or redo is reported.
func (f *File) Write(value string) error {
	if err := writeAtomic(f.path, []byte(value), f.mode); err != nil {
		f.lastErr = err
		return err
	}
	f.lastErr = nil
	f.ref.Set(value)
	return nil
}

// Err returns the error from the last write, if it failed.
func (f *File) Err() error {
	return f.lastErr
}

// Subscribe registers a change handler.
func (f *File) Subscribe(handler func(previous string)) func() {
	return f.ref.Subscribe(handler)
}

// Sync re-reads the file. Subscribers are notified when the contents differ
// from the cache, so the echo of our own writes is silent.
func (f *File) Sync() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	f.ref.Set(string(data))
	return nil
}

// Watch signals on changed whenever the file may have been modified, until ctx
// is cancelled. The parent directory is watched so editors that replace the
// file by renaming over it are still seen. Signals are dropped while one is
// already pending.
func (f *File) Watch(ctx context.Context, changed chan<- struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("watching %s: %w", f.path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			select {
			case changed <- struct{}{}:
			default:
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Watcher errors are non-fatal; continue watching.
			f.log.Debug("file watch error", "path", f.path, "error", err)
		}
	}
}

// writeAtomic writes data to a temp file in the same directory and renames it
// over path, so readers never see a partial write.
func writeAtomic(path string, data []byte, mode os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	tmpName := tmp.Name()

	// Clean up the temp file on any error path.
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
