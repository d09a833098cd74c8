// Package document builds the immutable payload snapshots the shell renders:
// a point-in-time view of one markdown file, or a deterministic listing of a
// folder's markdown files. Payloads are rebuilt from scratch on every change,
// never patched.
package document

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/starford/mudkip/internal/apperr"
	"github.com/starford/mudkip/internal/launch"
)

// FilePayload is a content snapshot of a markdown file. It is stale the
// instant the underlying file changes.
type FilePayload struct {
	FilePath string `json:"filePath"`
	FileName string `json:"fileName"`
	BaseHref string `json:"baseHref"`
	Content  string `json:"content"`
}

// FolderFilePayload is one qualifying file in a folder listing.
type FolderFilePayload struct {
	FilePath string `json:"filePath"`
	FileName string `json:"fileName"`
}

// FolderPayload is a listing of a folder's markdown files, sorted
// case-insensitively then case-sensitively by file name.
type FolderPayload struct {
	FolderPath string              `json:"folderPath"`
	Files      []FolderFilePayload `json:"files"`
}

// BuildFile reads path and produces its payload. The extension allow-list is
// re-checked here so a stale watch cannot outlive a rename to a non-markdown
// extension. Content is decoded as UTF-8 with lossy replacement of invalid
// sequences, so the build never fails on byte content.
func BuildFile(path string) (*FilePayload, error) {
	canonical, err := launch.Canonicalize(path)
	if err != nil {
		return nil, fmt.Errorf("document: resolve file path %q: %v: %w", path, err, apperr.ErrNotFound)
	}
	if !launch.IsMarkdownPath(canonical) {
		return nil, fmt.Errorf("document: %q: %w", canonical, apperr.ErrNotMarkdown)
	}

	data, err := os.ReadFile(canonical)
	if err != nil {
		return nil, fmt.Errorf("document: read %q: %w", canonical, err)
	}
	content := strings.ToValidUTF8(string(data), "�")

	name := filepath.Base(canonical)
	if name == "." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("document: %q has no file name component", canonical)
	}

	parent := filepath.Dir(canonical)
	if parent == canonical {
		return nil, fmt.Errorf("document: %q has no parent directory", canonical)
	}
	baseHref, err := directoryURL(parent)
	if err != nil {
		return nil, fmt.Errorf("document: base href for %q: %w", parent, err)
	}

	return &FilePayload{
		FilePath: canonical,
		FileName: name,
		BaseHref: baseHref,
		Content:  content,
	}, nil
}

// BuildFolder lists the qualifying markdown files directly inside path.
func BuildFolder(path string) (*FolderPayload, error) {
	canonical, err := launch.Canonicalize(path)
	if err != nil {
		return nil, fmt.Errorf("document: resolve folder path %q: %v: %w", path, err, apperr.ErrNotFound)
	}
	info, err := os.Stat(canonical)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("document: %q: %w", canonical, apperr.ErrNotFolder)
	}

	files, err := ListMarkdownFiles(canonical)
	if err != nil {
		return nil, err
	}
	return &FolderPayload{FolderPath: canonical, Files: files}, nil
}

// ListMarkdownFiles enumerates the direct (non-recursive) markdown files of
// dir. Failing to enumerate the directory itself is fatal; individual
// entries that are not regular files, fail the allow-list, or vanish before
// re-verification are skipped, because transient entries are expected under
// concurrent filesystem activity.
func ListMarkdownFiles(dir string) ([]FolderFilePayload, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("document: read folder %q: %w", dir, err)
	}

	files := make([]FolderFilePayload, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !launch.IsMarkdownPath(path) {
			continue
		}

		// Re-verify through canonicalization: the entry may be gone already,
		// or a symlink swap may have changed what the name points at.
		canonical, err := launch.Canonicalize(path)
		if err != nil {
			continue
		}
		info, err := os.Stat(canonical)
		if err != nil || !info.Mode().IsRegular() || !launch.IsMarkdownPath(canonical) {
			continue
		}

		files = append(files, FolderFilePayload{
			FilePath: canonical,
			FileName: filepath.Base(canonical),
		})
	}

	slices.SortStableFunc(files, func(a, b FolderFilePayload) int {
		la, lb := strings.ToLower(a.FileName), strings.ToLower(b.FileName)
		if c := strings.Compare(la, lb); c != 0 {
			return c
		}
		return strings.Compare(a.FileName, b.FileName)
	})
	return files, nil
}

// directoryURL renders dir as a file:// URL with a trailing slash, suitable
// as a base for resolving a document's relative links.
func directoryURL(dir string) (string, error) {
	p := filepath.ToSlash(dir)
	if p == "" {
		return "", fmt.Errorf("empty directory path")
	}
	if !strings.HasPrefix(p, "/") {
		// Windows drive paths need a leading slash in the URL path.
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String(), nil
}
