package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Supported extensions, lower-case with the leading dot
const (
	ExtPDF  = ".pdf"
	ExtDOCX = ".docx"
	ExtXLSX = ".xlsx"
	ExtCSV  = ".csv"
)

var supportedExtensions = map[string]bool{
	ExtPDF:  true,
	ExtDOCX: true,
	ExtXLSX: true,
	ExtCSV:  true,
}

// SupportedExtensions returns the accepted extensions in sorted order
func SupportedExtensions() []string {
	out := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Extension returns the lower-cased extension of name
func Extension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// CheckExtension rejects names whose extension no loader handles
func CheckExtension(name string) error {
	ext := Extension(name)
	if !supportedExtensions[ext] {
		return fmt.Errorf("%w %q (allowed: %s)", ErrUnsupportedFormat, ext,
			strings.Join(SupportedExtensions(), ", "))
	}
	return nil
}

// CheckSize rejects empty payloads and payloads over maxSize bytes
func CheckSize(size, maxSize int64) error {
	if size == 0 {
		return ErrEmptyFile
	}
	if maxSize > 0 && size > maxSize {
		return fmt.Errorf("%w: %d bytes (max: %d bytes)", ErrFileTooLarge, size, maxSize)
	}
	return nil
}

// CheckFile validates a file on disk before it is handed to a loader
func CheckFile(path string, maxSize int64) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if err := CheckExtension(path); err != nil {
		return err
	}
	return CheckSize(info.Size(), maxSize)
}

// PathGuard confines tool-supplied paths to one directory
type PathGuard struct {
	root string
}

// NewPathGuard creates a guard rooted at dir
func NewPathGuard(dir string) (*PathGuard, error) {
	if dir == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configured directory: %w", err)
	}
	return &PathGuard{root: abs}, nil
}

// Root returns the directory the guard confines paths to
func (g *PathGuard) Root() string {
	return g.root
}

// Resolve turns path into an absolute path inside the root. Relative paths
// are taken relative to the root; symlinks are followed before the check.
func (g *PathGuard) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(g.root, path)
	}
	clean := filepath.Clean(path)

	realRoot := g.root
	if resolved, err := filepath.EvalSymlinks(g.root); err == nil {
		realRoot = resolved
	}
	realPath := clean
	if resolved, err := filepath.EvalSymlinks(clean); err == nil {
		realPath = resolved
	}

	if !within(clean, g.root, realRoot) || !within(realPath, g.root, realRoot) {
		return "", fmt.Errorf("%w: %s", ErrOutsideDirectory, path)
	}
	return clean, nil
}

func within(path string, roots ...string) bool {
	for _, root := range roots {
		if path == root {
			return true
		}
		prefix := root
		if !strings.HasSuffix(prefix, string(filepath.Separator)) {
			prefix += string(filepath.Separator)
		}
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
