package encoder

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Archive keeps a copy of every session's audio in Dir.
type Archive struct {
	Dir    string
	Format string
}

// Save writes samples to <Dir>/<time>-<id>.<format> and returns the path.
func (a Archive) Save(id string, samples []float32) (string, error) {
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return "", fmt.Errorf("archive dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.%s", time.Now().Format("20060102-150405"), id, a.Format)
	path := filepath.Join(a.Dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	enc, err := New(a.Format, f)
	if err != nil {
		os.Remove(path)
		return "", err
	}
	if err := EncodeAll(enc, samples); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
