// Package ledger remembers which games were already appended so re-running
// after the same match does not write a second row.
package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

const (
	expectedGames     = 100000
	falsePositiveRate = 0.0001
)

// Ledger is a bloom filter of recorded game ids, persisted to a file.
// A false positive reports an unseen game as recorded; -force overrides it.
type Ledger struct {
	path  string
	scope string

	mu       sync.Mutex
	recorded *bloom.BloomFilter
	dirty    bool
}

// Open loads the ledger at path, or starts an empty one if the file does
// not exist. scope separates destinations sharing one ledger file.
func Open(path, scope string) (*Ledger, error) {
	l := &Ledger{
		path:     path,
		scope:    scope,
		recorded: bloom.NewWithEstimates(expectedGames, falsePositiveRate),
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return l, nil
		}
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	if _, err := l.recorded.ReadFrom(bufio.NewReader(f)); err != nil {
		return nil, fmt.Errorf("failed to read ledger %s: %w", path, err)
	}
	return l, nil
}

func (l *Ledger) key(gameID int64) string {
	return l.scope + "/" + strconv.FormatInt(gameID, 10)
}

// Seen reports whether the game was probably recorded before
func (l *Ledger) Seen(gameID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.recorded.TestString(l.key(gameID))
}

// Mark records the game
func (l *Ledger) Mark(gameID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recorded.AddString(l.key(gameID))
	l.dirty = true
}

// Save writes the filter back to disk if anything was marked
func (l *Ledger) Save() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	// write then rename so a crash never leaves a truncated filter
	tmp := l.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create ledger: %w", err)
	}
	w := bufio.NewWriter(f)
	if _, err := l.recorded.WriteTo(w); err != nil {
		f.Close()
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("failed to replace ledger: %w", err)
	}

	l.dirty = false
	return nil
}
