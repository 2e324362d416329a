package settings

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
)

// fileFormat is the on-disk layout: every setting under [system]
type fileFormat struct {
	System map[string]any `toml:"system"`
}

// FileStore is a Store persisted as a TOML file. Writes go through a temp
// file and rename. Watch picks up edits made by other processes and notifies
// observers of the keys that changed.
type FileStore struct {
	path string

	mu     sync.RWMutex
	values map[string]string

	observers observerSet

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// OpenFile loads path. A missing file is an empty store and is created on
// the first write.
func OpenFile(path string) (*FileStore, error) {
	s := &FileStore{
		path:   filepath.Clean(path),
		values: make(map[string]string),
	}

	values, err := s.read()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if values != nil {
		s.values = values
	}

	return s, nil
}

// Path returns the settings file path
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	var f fileFormat
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", s.path, err)
	}

	values := make(map[string]string, len(f.System))
	for k, v := range f.System {
		switch t := v.(type) {
		case string:
			values[k] = t
		case int64:
			values[k] = strconv.FormatInt(t, 10)
		case bool:
			if t {
				values[k] = "1"
			} else {
				values[k] = "0"
			}
		default:
			values[k] = fmt.Sprint(t)
		}
	}
	return values, nil
}

// write must be called with s.mu held
func (s *FileStore) write() error {
	f := fileFormat{System: make(map[string]any, len(s.values))}
	for k, v := range s.values {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && strconv.FormatInt(n, 10) == v {
			f.System[k] = n
		} else {
			f.System[k] = v
		}
	}

	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.toml")
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// GetString returns the value of key and whether it is set
func (s *FileStore) GetString(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// GetInt returns key as an int, or def when unset or not a number
func (s *FileStore) GetInt(key string, def int) int {
	v, ok := s.GetString(key)
	return parseInt(v, ok, def)
}

// PutString stores and persists value, notifying observers if it changed.
// On a write error the old value is kept.
func (s *FileStore) PutString(key, value string) error {
	s.mu.Lock()
	old, had := s.values[key]
	if had && old == value {
		s.mu.Unlock()
		return nil
	}

	s.values[key] = value
	if err := s.write(); err != nil {
		if had {
			s.values[key] = old
		} else {
			delete(s.values, key)
		}
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.observers.notify([]string{key})
	return nil
}

// PutInt stores value as a decimal string
func (s *FileStore) PutInt(key string, value int) error {
	return s.PutString(key, strconv.Itoa(value))
}

// Observe registers fn for changes to keys
func (s *FileStore) Observe(keys []string, fn func(key string)) (func(), error) {
	return s.observers.add(keys, fn)
}

// Reload rereads the file and notifies observers of changed keys. A file
// that fails to parse leaves the current values in place.
func (s *FileStore) Reload() error {
	values, err := s.read()
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	changed := diff(s.values, values)
	s.values = values
	s.mu.Unlock()

	if len(changed) > 0 {
		log.Printf("[SETTINGS] Reloaded %s: %d keys changed", s.path, len(changed))
		s.observers.notify(changed)
	}
	return nil
}

// Watch starts watching the settings file for outside edits
func (s *FileStore) Watch() error {
	if s.watcher != nil {
		return errors.New("already watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// editors and our own writes replace the file, so watch the directory
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		watcher.Close()
		return err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	s.watcher = watcher
	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.watch()

	log.Printf("[SETTINGS] Watching %s", s.path)
	return nil
}

func (s *FileStore) watch() {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				if err := s.Reload(); err != nil {
					log.Printf("[SETTINGS] Reload failed: %v", err)
				}
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[SETTINGS] Watcher error: %v", err)
		}
	}
}

// Close stops watching
func (s *FileStore) Close() error {
	if s.watcher == nil {
		return nil
	}
	close(s.done)
	err := s.watcher.Close()
	s.wg.Wait()
	s.watcher = nil
	return err
}
