package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
)

// maxPageBytes bounds how much of a file is read as page content.
const maxPageBytes = 16 << 20

var (
	savedFromRe = regexp.MustCompile(`<!--\s*saved from url=\(\d+\)(\S+?)\s*-->`)
	canonicalRe = regexp.MustCompile(`(?i)<link[^>]+rel=["']canonical["'][^>]*href=["']([^"']+)["']`)
)

// IsPageFile reports whether path names a visible HTML file.
func IsPageFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".html", ".htm":
		return true
	default:
		return false
	}
}

// FileURL returns the file:// URL of path.
func FileURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + filepath.ToSlash(abs)
}

// LocalPath converts a file:// URL back to a path. Other URLs pass through.
func LocalPath(url string) string {
	return filepath.FromSlash(strings.TrimPrefix(url, "file://"))
}

// SourceURL returns the URL the markup was saved from, or "".
func SourceURL(markup string) string {
	if m := savedFromRe.FindStringSubmatch(markup); m != nil {
		return m[1]
	}
	if m := canonicalRe.FindStringSubmatch(markup); m != nil {
		return m[1]
	}
	return ""
}

// ReadPage loads a page from an HTML file.
func ReadPage(path string) (domain.Page, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.Page{}, err
	}
	if info.Size() > maxPageBytes {
		return domain.Page{}, fs.ErrInvalid
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Page{}, err
	}

	content := string(data)
	url := SourceURL(content)
	if url == "" {
		url = FileURL(path)
	}
	return domain.Page{
		URL:        url,
		Content:    &content,
		ObservedAt: info.ModTime(),
	}, nil
}

// Scan reads every page file under dir, skipping hidden directories.
func Scan(dir string) ([]domain.Page, error) {
	var pages []domain.Page
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsPageFile(path) {
			return nil
		}
		page, err := ReadPage(path)
		if err != nil {
			return err
		}
		pages = append(pages, page)
		return nil
	})
	return pages, err
}
