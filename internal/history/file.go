package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	domain "github.com/lsm5482-blip/my-coupang-bot/pkg/types"
)

// FileStore keeps price history in a single JSON file of the form
// {"<productId>": {"prices": [..]}}.
type FileStore struct {
	path string
	log  *slog.Logger
	now  func() time.Time
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithFileLogger sets the logger.
func WithFileLogger(l *slog.Logger) FileStoreOption {
	return func(s *FileStore) {
		s.log = l
	}
}

// WithFileNowFunc sets the clock used to name quarantined files.
func WithFileNowFunc(fn func() time.Time) FileStoreOption {
	return func(s *FileStore) {
		s.now = fn
	}
}

// NewFileStore creates a FileStore backed by path.
func NewFileStore(path string, opts ...FileStoreOption) *FileStore {
	s := &FileStore{path: path, log: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the history file. A missing file is an empty history. Load never
// modifies the file: one that cannot be decoded yields an error wrapping both
// ErrPersistence and ErrCorrupt and is left in place for Quarantine.
func (s *FileStore) Load(_ context.Context) (map[string]*domain.PriceRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]*domain.PriceRecord), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrPersistence, s.path, err)
	}

	records := make(map[string]*domain.PriceRecord)
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w: decoding %s: %w", ErrPersistence, ErrCorrupt, s.path, err)
	}

	for id, rec := range records {
		if rec == nil {
			records[id] = &domain.PriceRecord{}
		}
	}
	return records, nil
}

// Quarantine renames the history file to <path>.corrupt-<UTC timestamp> and
// returns the new name. Earlier quarantined files are never overwritten.
func (s *FileStore) Quarantine(_ context.Context) (string, error) {
	aside := s.path + ".corrupt-" + s.now().UTC().Format("20060102T150405.000000000Z")
	if _, err := os.Stat(aside); err == nil {
		return "", fmt.Errorf("%w: quarantine target %s exists", ErrPersistence, aside)
	}
	if err := os.Rename(s.path, aside); err != nil {
		return "", fmt.Errorf("%w: moving %s aside: %w", ErrPersistence, s.path, err)
	}
	s.log.Warn("corrupt history file moved aside", "path", s.path, "moved_to", aside)
	return aside, nil
}

// Persist replaces the history file with records. The new content is written
// to a temporary file in the same directory, synced and renamed over the
// target, so readers see either the old or the new file.
func (s *FileStore) Persist(_ context.Context, records map[string]*domain.PriceRecord) error {
	if records == nil {
		records = map[string]*domain.PriceRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding history: %w", ErrPersistence, err)
	}
	data = append(data, '\n')

	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	committed = true
	return nil
}
