// Package file persists each cart slot as a JSON file under a state
// directory, one file per slot.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"storefront/internal/cart"
	"storefront/internal/domain"
)

type Slots struct {
	dir string
}

// New builds a file-backed slot provider rooted at dir. The directory is
// created on first write.
func New(dir string) *Slots {
	return &Slots{dir: dir}
}

func (s *Slots) Slot(key string) cart.Storage {
	// Escape the key so arbitrary session ids cannot traverse paths.
	name := url.PathEscape(key) + ".json"
	return &slot{path: filepath.Join(s.dir, name), dir: s.dir}
}

type slot struct {
	path string
	dir  string
}

func (s *slot) Load(_ context.Context) ([]domain.LineItem, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cart slot: %w", err)
	}
	var items []domain.LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptState, err)
	}
	return items, nil
}

func (s *slot) Save(_ context.Context, items []domain.LineItem) error {
	if items == nil {
		items = []domain.LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart slot: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	// Write-then-rename so a crash mid-write cannot leave a torn file.
	tmp, err := os.CreateTemp(s.dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp slot: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cart slot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close cart slot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace cart slot: %w", err)
	}
	return nil
}

func (s *slot) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cart slot: %w", err)
	}
	return nil
}
