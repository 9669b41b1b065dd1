package wrapper

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	// DefaultKeepLogs is how many activation cycle logs to retain per IDE.
	DefaultKeepLogs = 5
	// cycleLogTimeFormat sorts lexically, which is what pruning relies on.
	cycleLogTimeFormat = "20060102-150405"
)

// CycleLogPath returns the log file path for one activation cycle. The
// naming convention `{purpose}-{ide}-{timestamp}.log` is stable so consumers
// and tests can glob for it.
func CycleLogPath(dir, purpose, ide string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%s-%s.log", purpose, ide, now.Format(cycleLogTimeFormat)))
}

// PruneCycleLogs removes all but the keep most recent cycle logs for the
// given purpose and IDE.
func PruneCycleLogs(dir, purpose, ide string, keep int) error {
	if keep < 1 {
		keep = DefaultKeepLogs
	}
	matches, err := filepath.Glob(filepath.Join(dir, fmt.Sprintf("%s-%s-*.log", purpose, ide)))
	if err != nil {
		return err
	}
	if len(matches) <= keep {
		return nil
	}
	sort.Strings(matches)
	for _, old := range matches[:len(matches)-keep] {
		if err := os.Remove(old); err != nil {
			return err
		}
	}
	return nil
}
