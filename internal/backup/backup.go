// Package backup copies the ledger database file to timestamped archives and back.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

const timestampLayout = "20060102_150405"

var (
	// ErrNotFound is returned when restoring a backup that does not exist.
	ErrNotFound = errors.New("backup not found")
	// ErrInMemory is returned for stores without a file to copy.
	ErrInMemory = errors.New("in-memory database has no file to back up")
)

// Store is the database whose file is archived. *storage.DB implements it.
type Store interface {
	Path() string
	InMemory() bool
	Close() error
	Reopen(ctx context.Context) error
}

// Info describes one archived copy.
type Info struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Manager creates, lists and restores backups in one directory.
type Manager struct {
	store Store
	dir   string
	now   func() time.Time
	log   logrus.FieldLogger
}

// NewManager creates the backup directory if needed.
func NewManager(store Store, dir string, log logrus.FieldLogger) (*Manager, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}
	return &Manager{store: store, dir: dir, now: time.Now, log: log.WithField("component", "backup")}, nil
}

func (m *Manager) prefix() string {
	return filepath.Base(m.store.Path()) + "_backup_"
}

// Backup copies the database file to <dir>/<db>_backup_<timestamp>.db.
func (m *Manager) Backup(ctx context.Context) (Info, error) {
	if m.store.InMemory() {
		return Info{}, ErrInMemory
	}
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}

	base := m.prefix() + m.now().Format(timestampLayout)
	name := base + ".db"
	for i := 2; ; i++ {
		if _, err := os.Stat(filepath.Join(m.dir, name)); errors.Is(err, os.ErrNotExist) {
			break
		}
		name = fmt.Sprintf("%s_%d.db", base, i)
	}

	dst := filepath.Join(m.dir, name)
	if err := copyFile(m.store.Path(), dst); err != nil {
		return Info{}, fmt.Errorf("back up database: %w", err)
	}

	info, err := stat(dst)
	if err != nil {
		return Info{}, err
	}

	m.log.WithFields(logrus.Fields{"backup": info.Name, "size": info.Size}).Info("Backup.Create.Complete")
	return info, nil
}

// List returns the backups of the current database, oldest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	prefix := m.prefix()
	var backups []Info
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".db") {
			continue
		}
		info, err := stat(filepath.Join(m.dir, name))
		if err != nil {
			return nil, err
		}
		backups = append(backups, info)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Name < backups[j].Name
	})
	return backups, nil
}

// Restore replaces the live database file with the named backup. The store is
// closed for the copy and reopened afterwards, even when the copy fails.
func (m *Manager) Restore(ctx context.Context, name string) error {
	if m.store.InMemory() {
		return ErrInMemory
	}

	src := name
	if filepath.Base(name) == name {
		src = filepath.Join(m.dir, name)
	}
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return err
	}

	if err := m.store.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	var result *multierror.Error
	if err := replaceFile(src, m.store.Path()); err != nil {
		result = multierror.Append(result, fmt.Errorf("restore database: %w", err))
	}
	if err := m.store.Reopen(ctx); err != nil {
		result = multierror.Append(result, fmt.Errorf("reopen database: %w", err))
	}
	if err := result.ErrorOrNil(); err != nil {
		return err
	}

	m.log.WithField("backup", filepath.Base(src)).Info("Backup.Restore.Complete")
	return nil
}

func stat(path string) (Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	return Info{Name: fi.Name(), Path: path, Size: fi.Size(), ModTime: fi.ModTime()}, nil
}

// replaceFile copies src next to dst and renames it into place.
func replaceFile(src, dst string) error {
	tmp := dst + ".restore"
	if err := copyFile(src, tmp); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
