package reasonchain

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var ErrNoResults = errors.New("no saved results")

// SaveResult writes r as indented JSON to path, replacing any previous content.
func SaveResult(path string, r *Result) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create result directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write result file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write result file: %w", err)
	}
	return nil
}

// LoadResult reads a result written by SaveResult and checks its consistency.
func LoadResult(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoResults, path)
		}
		return nil, err
	}

	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

type StoreConfig struct {
	// LatestFile is rewritten on every Save when set.
	LatestFile string
	// Directory keeps one timestamped file per result when set.
	Directory string
	Retention time.Duration
	MaxFiles  int
}

const (
	defaultRetention = 7 * 24 * time.Hour
	defaultMaxFiles  = 10
	historyPrefix    = "result-"
	historySuffix    = ".json"
)

// ResultStore persists pipeline results. With a Directory it keeps a pruned history
// of results; with a LatestFile it keeps only the most recent one.
type ResultStore struct {
	mu      sync.Mutex
	config  StoreConfig
	counter int64
}

func NewResultStore(config StoreConfig) (*ResultStore, error) {
	if config.LatestFile == "" && config.Directory == "" {
		return nil, errors.New("result store needs a latest file or a directory")
	}
	if config.Retention == 0 {
		config.Retention = defaultRetention
	}
	if config.MaxFiles == 0 {
		config.MaxFiles = defaultMaxFiles
	}
	if config.Directory != "" {
		if err := os.MkdirAll(config.Directory, 0755); err != nil {
			return nil, fmt.Errorf("failed to create result directory: %w", err)
		}
	}
	return &ResultStore{config: config}, nil
}

// NewResultStoreFromSettings maps the results section of Settings.
func NewResultStoreFromSettings(s ResultSettings) (*ResultStore, error) {
	return NewResultStore(StoreConfig{
		LatestFile: s.File,
		Directory:  s.Directory,
		Retention:  s.Retention,
		MaxFiles:   s.MaxFiles,
	})
}

// Save writes r and returns the path of the history file, or of the latest file
// when no directory is configured.
func (s *ResultStore) Save(r *Result) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	written := ""
	if s.config.Directory != "" {
		counter := atomic.AddInt64(&s.counter, 1)
		name := fmt.Sprintf("%s%s.%03d%s", historyPrefix, r.Timestamp.UTC().Format("20060102150405"), counter, historySuffix)
		written = filepath.Join(s.config.Directory, name)
		if err := SaveResult(written, r); err != nil {
			return "", err
		}
		s.cleanup()
	}

	if s.config.LatestFile != "" {
		if err := SaveResult(s.config.LatestFile, r); err != nil {
			return "", err
		}
		if written == "" {
			written = s.config.LatestFile
		}
	}
	return written, nil
}

// Latest returns the most recently saved result.
func (s *ResultStore) Latest() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.LatestFile != "" {
		return LoadResult(s.config.LatestFile)
	}

	files, err := s.historyFiles()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoResults
	}
	return LoadResult(files[len(files)-1].path)
}

type historyFile struct {
	path    string
	modTime time.Time
}

// historyFiles lists result files oldest first.
func (s *ResultStore) historyFiles() ([]historyFile, error) {
	entries, err := os.ReadDir(s.config.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to read result directory: %w", err)
	}

	var files []historyFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), historyPrefix) || !strings.HasSuffix(entry.Name(), historySuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, historyFile{
			path:    filepath.Join(s.config.Directory, entry.Name()),
			modTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].modTime.Equal(files[j].modTime) {
			return files[i].path < files[j].path
		}
		return files[i].modTime.Before(files[j].modTime)
	})
	return files, nil
}

func (s *ResultStore) cleanup() {
	files, err := s.historyFiles()
	if err != nil {
		slog.Error("Failed to read result directory", "error", err)
		return
	}

	kept := files[:0]
	if s.config.Retention > 0 {
		cutoff := time.Now().Add(-s.config.Retention)
		for _, f := range files {
			if f.modTime.Before(cutoff) {
				if err := os.Remove(f.path); err != nil {
					slog.Error("Failed to remove old result file", "file", f.path, "error", err)
					kept = append(kept, f)
				} else {
					slog.Debug("Removed old result file", "file", filepath.Base(f.path))
				}
				continue
			}
			kept = append(kept, f)
		}
		files = kept
	}

	if s.config.MaxFiles > 0 && len(files) > s.config.MaxFiles {
		for _, f := range files[:len(files)-s.config.MaxFiles] {
			if err := os.Remove(f.path); err != nil {
				slog.Error("Failed to remove excess result file", "file", f.path, "error", err)
			} else {
				slog.Debug("Removed excess result file", "file", filepath.Base(f.path))
			}
		}
	}
}
