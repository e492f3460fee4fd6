package repo

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	HistoryRepoJSONPrefix = "inertiacms-repo-"
	HistoryRepoJSONSuffix = ".json"
	CurrentKey            = HistoryRepoJSONPrefix + "current" + HistoryRepoJSONSuffix

	// fixed width, backups sort lexically
	backupTimeLayout = "2006-01-02T15-04-05.000000000"
)

type (
	// History keeps the current repo snapshot and a limited number of backups
	History struct {
		l            *zap.Logger
		storage      Storage
		historyDir   string // directory used for default filesystem storage
		historyLimit int
		mu           sync.RWMutex
	}
	HistoryOption func(*History)
)

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func HistoryWithHistoryLimit(v int) HistoryOption {
	return func(o *History) {
		o.historyLimit = v
	}
}

func HistoryWithHistoryDir(v string) HistoryOption {
	return func(o *History) {
		o.historyDir = v
	}
}

func HistoryWithStorage(v Storage) HistoryOption {
	return func(o *History) {
		o.storage = v
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

func NewHistory(l *zap.Logger, opts ...HistoryOption) (*History, error) {
	inst := &History{
		l:            l.Named("history"),
		historyDir:   "/var/lib/inertiacms",
		historyLimit: 2,
	}

	for _, opt := range opts {
		opt(inst)
	}

	if inst.storage == nil {
		storage, err := NewFilesystemStorage(inst.historyDir)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create default filesystem storage")
		}
		inst.storage = storage
	}

	return inst, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Add stores the snapshot as a timestamped backup and as the current version
// and drops backups beyond the limit.
func (h *History) Add(ctx context.Context, jsonBytes []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	backupKey := HistoryRepoJSONPrefix + time.Now().UTC().Format(backupTimeLayout) + HistoryRepoJSONSuffix
	h.l.Debug("writing snapshot",
		zap.String("backup", backupKey),
		zap.String("current", CurrentKey),
	)

	for _, key := range []string{backupKey, CurrentKey} {
		if err := h.storage.Write(ctx, key, jsonBytes); err != nil {
			return errors.Wrapf(err, "failed to write %q", key)
		}
	}

	return errors.Wrap(h.cleanup(ctx), "failed to clean up history")
}

// GetCurrent reads the current snapshot into the buffer. A missing snapshot
// is reported as os.ErrNotExist.
func (h *History) GetCurrent(ctx context.Context, buf *bytes.Buffer) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data, err := h.storage.Read(ctx, CurrentKey)
	if err != nil {
		return err
	}
	_, err = buf.Write(data)
	return err
}

// Versions lists the keys of the backups, newest first
func (h *History) Versions(ctx context.Context) ([]string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.getHistory(ctx)
}

// Close releases resources held by the storage
func (h *History) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.storage != nil {
		return h.storage.Close()
	}
	return nil
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (h *History) getHistory(ctx context.Context) ([]string, error) {
	keys, err := h.storage.List(ctx, HistoryRepoJSONPrefix)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(keys))
	for _, key := range keys {
		if key != CurrentKey && strings.HasSuffix(key, HistoryRepoJSONSuffix) {
			files = append(files, key)
		}
	}
	return files, nil
}

func (h *History) cleanup(ctx context.Context) error {
	files, err := h.getFilesForCleanup(ctx, h.historyLimit)
	if err != nil {
		return err
	}
	for _, f := range files {
		h.l.Debug("removing outdated backup", zap.String("file", f))
		if err := h.storage.Delete(ctx, f); err != nil {
			return errors.Wrapf(err, "could not remove %s", f)
		}
	}
	return nil
}

func (h *History) getFilesForCleanup(ctx context.Context, historyVersions int) ([]string, error) {
	files, err := h.getHistory(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "could not generate file cleanup list")
	}
	if len(files) <= historyVersions {
		return nil, nil
	}
	return files[historyVersions:], nil
}
