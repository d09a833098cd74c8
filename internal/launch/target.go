// Package launch resolves what a process invocation asked to open: it
// classifies filesystem paths into launch targets and parses raw argument
// vectors into a launch request with startup options.
package launch

import (
	"os"
	"path/filepath"
	"strings"
)

// TargetKind discriminates the launch target variants.
type TargetKind int

const (
	KindFile TargetKind = iota
	KindFolder
)

// String returns the wire name of the kind.
func (k TargetKind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	default:
		return "file"
	}
}

// markdownExts is the single extension allow-list. The classifier, the
// payload builder, the watch coordinators, and the picker filter must all
// agree on it; a divergence would let a watch silently stop firing on a file
// the picker happily opened.
var markdownExts = []string{"md", "markdown", "mdown", "mkd", "txt"}

// MarkdownExtensions returns the extension allow-list (without dots), for
// building picker filters.
func MarkdownExtensions() []string {
	out := make([]string, len(markdownExts))
	copy(out, markdownExts)
	return out
}

// IsMarkdownPath reports whether the path's extension is on the allow-list,
// case-insensitively.
func IsMarkdownPath(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return false
	}
	for _, allowed := range markdownExts {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Canonicalize resolves symlinks and relative segments to an absolute,
// unique form. It fails when the path does not exist.
func Canonicalize(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}

// Target is a classified launch target. Path is always canonical and, for
// KindFile, always passes the markdown allow-list.
type Target struct {
	Kind TargetKind
	Path string
}

// TargetPayload is the wire shape of a Target.
type TargetPayload struct {
	TargetType string `json:"targetType"`
	Path       string `json:"path"`
}

// Payload projects the target into its wire shape.
func (t Target) Payload() TargetPayload {
	return TargetPayload{TargetType: t.Kind.String(), Path: t.Path}
}

// Classify decides whether path denotes a watchable file, a watchable
// folder, or neither. A path that cannot be canonicalized or does not exist
// is not a target; that is a normal startup mode, not an error.
func Classify(path string) (Target, bool) {
	canonical, err := Canonicalize(path)
	if err != nil {
		return Target{}, false
	}
	info, err := os.Stat(canonical)
	if err != nil {
		return Target{}, false
	}
	if info.IsDir() {
		return Target{Kind: KindFolder, Path: canonical}, true
	}
	if info.Mode().IsRegular() && IsMarkdownPath(canonical) {
		return Target{Kind: KindFile, Path: canonical}, true
	}
	return Target{}, false
}
