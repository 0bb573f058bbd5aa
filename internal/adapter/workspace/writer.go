package workspace

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"self-improving-agent/internal/domain"
)

var ErrPathNotAllowed = fmt.Errorf("path %w", domain.ErrNotAllowed)

// Writer creates files below a single workspace directory. Every write goes
// through an os.Root, so symlinks cannot lead outside of it either.
type Writer struct {
	root *os.Root
	dir  string
	deny []string
}

// Open roots a Writer at dir. Names matching one of the deny globs are
// refused; a glob without a slash is matched against the base name.
func Open(dir string, deny []string) (*Writer, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	for _, p := range deny {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid deny pattern %q", p)
		}
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, err
	}

	return &Writer{
		root: root,
		dir:  abs,
		deny: deny,
	}, nil
}

func (w *Writer) Dir() string {
	return w.dir
}

func (w *Writer) Close() error {
	return w.root.Close()
}

// WriteFile creates or truncates name and writes content to it, creating
// parent directories as needed.
func (w *Writer) WriteFile(name, content string) error {
	rel, err := w.resolve(name)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(rel); dir != "." {
		if err := w.root.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", name, err)
		}
	}

	file, err := w.root.OpenFile(rel, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create file %s: %w", name, err)
	}

	if _, err := file.WriteString(content); err != nil {
		file.Close()
		return fmt.Errorf("write file %s: %w", name, err)
	}
	return file.Close()
}

func (w *Writer) resolve(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty file name", ErrPathNotAllowed)
	}

	if filepath.IsAbs(trimmed) || !filepath.IsLocal(trimmed) {
		return "", fmt.Errorf("%w: %s is outside the workspace", ErrPathNotAllowed, name)
	}

	rel := filepath.Clean(trimmed)
	slashed := filepath.ToSlash(rel)
	for _, p := range w.deny {
		target := slashed
		if !strings.Contains(p, "/") {
			target = path.Base(slashed)
		}
		if ok, _ := doublestar.Match(p, target); ok {
			return "", fmt.Errorf("%w: %s matches %s", ErrPathNotAllowed, name, p)
		}
	}

	return rel, nil
}
