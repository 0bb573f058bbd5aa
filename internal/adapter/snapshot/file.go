package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"self-improving-agent/internal/domain"
)

// File persists the whole conversation as one indented JSON array,
// replacing the previous contents on every save.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Save(msgs []domain.Message) error {
	if msgs == nil {
		msgs = []domain.Message{}
	}

	data, err := json.MarshalIndent(msgs, "", "    ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load reads a previously saved conversation. A missing file yields
// os.ErrNotExist.
func (f *File) Load() ([]domain.Message, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}

	var msgs []domain.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", f.path, err)
	}
	return msgs, nil
}
