package internal

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const fileStoreVersion = "1.0"

// FileKV stores each document in its own JSON file under a directory, with a YAML index
// of the keys. Useful when the documents should stay human-readable on disk.
type FileKV struct {
	mu  sync.Mutex
	dir string
}

// FileIndexEntry describes one stored document
type FileIndexEntry struct {
	Key       string    `yaml:"key"`
	File      string    `yaml:"file"`
	Size      int       `yaml:"size"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// FileIndex is the YAML index of a FileKV directory
type FileIndex struct {
	Version   string           `yaml:"version"`
	CreatedAt time.Time        `yaml:"created_at"`
	UpdatedAt time.Time        `yaml:"updated_at"`
	Entries   []FileIndexEntry `yaml:"entries"`
}

// NewFileKV creates a file store rooted at dir
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &StorageError{Key: dir, Op: "open", Err: err}
	}
	return &FileKV{dir: dir}, nil
}

// Dir returns the root directory
func (f *FileKV) Dir() string { return f.dir }

// IndexPath returns the path of the YAML index
func (f *FileKV) IndexPath() string {
	return filepath.Join(f.dir, "index.yaml")
}

// DocumentPath returns the file holding key
func (f *FileKV) DocumentPath(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+".json")
}

// LoadIndex reads the index; a missing index is an empty one
func (f *FileKV) LoadIndex() (*FileIndex, error) {
	data, err := os.ReadFile(f.IndexPath())
	if os.IsNotExist(err) {
		now := time.Now().UTC()
		return &FileIndex{Version: fileStoreVersion, CreatedAt: now, UpdatedAt: now}, nil
	}
	if err != nil {
		return nil, err
	}

	var index FileIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, &ParseError{Source: "index", Key: f.IndexPath(), Err: err}
	}
	return &index, nil
}

func (f *FileKV) saveIndex(index *FileIndex) error {
	index.UpdatedAt = time.Now().UTC()
	data, err := yaml.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	return writeFileAtomic(f.IndexPath(), data)
}

func (f *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.DocumentPath(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StorageError{Key: key, Op: "get", Err: err}
	}
	return string(data), true, nil
}

func (f *FileKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	index, err := f.LoadIndex()
	if err != nil {
		return &StorageError{Key: key, Op: "set", Err: err}
	}
	path := f.DocumentPath(key)
	if err := writeFileAtomic(path, []byte(value)); err != nil {
		return &StorageError{Key: key, Op: "set", Err: err}
	}

	entry := FileIndexEntry{Key: key, File: filepath.Base(path), Size: len(value), UpdatedAt: time.Now().UTC()}
	found := false
	for i := range index.Entries {
		if index.Entries[i].Key == key {
			index.Entries[i] = entry
			found = true
			break
		}
	}
	if !found {
		index.Entries = append(index.Entries, entry)
	}
	if err := f.saveIndex(index); err != nil {
		return &StorageError{Key: key, Op: "set", Err: err}
	}
	return nil
}

func (f *FileKV) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.DocumentPath(key)); err != nil && !os.IsNotExist(err) {
		return &StorageError{Key: key, Op: "delete", Err: err}
	}
	index, err := f.LoadIndex()
	if err != nil {
		return &StorageError{Key: key, Op: "delete", Err: err}
	}
	kept := index.Entries[:0]
	for _, e := range index.Entries {
		if e.Key != key {
			kept = append(kept, e)
		}
	}
	index.Entries = kept
	if err := f.saveIndex(index); err != nil {
		return &StorageError{Key: key, Op: "delete", Err: err}
	}
	return nil
}

func (f *FileKV) Keys(_ context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	index, err := f.LoadIndex()
	if err != nil {
		return nil, &StorageError{Key: prefix, Op: "keys", Err: err}
	}
	var keys []string
	for _, e := range index.Entries {
		if strings.HasPrefix(e.Key, prefix) {
			keys = append(keys, e.Key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Clear removes every document and the index
func (f *FileKV) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	index, err := f.LoadIndex()
	if err == nil {
		for _, e := range index.Entries {
			_ = os.Remove(filepath.Join(f.dir, e.File))
		}
	}
	if err := os.Remove(f.IndexPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (f *FileKV) Close() error { return nil }

// writeFileAtomic writes to a temp file in the same directory and renames it over path
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
