package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const dateLayout = "2006-01-02"

// DailyFile is a zap sink writing to LOG_DIR/app-YYYY-MM-DD.log. The file is
// switched on the first write of a new day and files older than the retention
// window are removed at that moment.
type DailyFile struct {
	mu            sync.Mutex
	dir           string
	retentionDays int
	now           func() time.Time
	date          string
	file          *os.File
}

func NewDailyFile(dir string, retentionDays int) (*DailyFile, error) {
	return newDailyFile(dir, retentionDays, time.Now)
}

func newDailyFile(dir string, retentionDays int, now func() time.Time) (*DailyFile, error) {
	if retentionDays < 1 {
		retentionDays = 1
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	d := &DailyFile{dir: dir, retentionDays: retentionDays, now: now}
	if err := d.rotate(now().Format(dateLayout)); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *DailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if date := d.now().Format(dateLayout); date != d.date {
		if err := d.rotate(date); err != nil {
			return 0, err
		}
	}
	return d.file.Write(p)
}

func (d *DailyFile) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	return d.file.Sync()
}

func (d *DailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

func (d *DailyFile) rotate(date string) error {
	filename := filepath.Join(d.dir, fmt.Sprintf("app-%s.log", date))
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if d.file != nil {
		_ = d.file.Close()
	}
	d.file = file
	d.date = date
	d.cleanup()
	return nil
}

func (d *DailyFile) cleanup() {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return
	}
	cutoff := d.now().AddDate(0, 0, -(d.retentionDays - 1)).Format(dateLayout)
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || !strings.HasPrefix(name, "app-") || !strings.HasSuffix(name, ".log") {
			continue
		}
		datePart := strings.TrimSuffix(strings.TrimPrefix(name, "app-"), ".log")
		if _, err := time.Parse(dateLayout, datePart); err != nil {
			continue
		}
		if datePart < cutoff {
			_ = os.Remove(filepath.Join(d.dir, name))
		}
	}
}
