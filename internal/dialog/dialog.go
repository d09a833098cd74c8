// Package dialog opens native file and folder pickers through the desktop
// helper binaries available on the host.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/starford/mudkip/internal/apperr"
	"github.com/starford/mudkip/internal/launch"
)

// Picker runs native selection dialogs. The zero value is ready to use.
type Picker struct{}

// PickFile shows a file-selection dialog filtered to the markdown extension
// allow-list. It returns "" with a nil error when the user cancels.
func (Picker) PickFile(ctx context.Context) (string, error) {
	return runPicker(ctx, false)
}

// PickFolder shows a directory-selection dialog. It returns "" with a nil
// error when the user cancels.
func (Picker) PickFolder(ctx context.Context) (string, error) {
	return runPicker(ctx, true)
}

// runPicker tries each known helper in order. A helper that exists but exits
// non-zero means the user cancelled; a helper that is missing means we try
// the next one.
func runPicker(ctx context.Context, folder bool) (string, error) {
	for _, argv := range pickerCommands(folder) {
		out, err := exec.CommandContext(ctx, argv[0], argv[1:]...).Output()
		if err == nil {
			return strings.TrimSpace(string(out)), nil
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Helper ran and the user dismissed the dialog.
			return "", nil
		}
		// Helper not present on this host; fall through.
	}
	return "", fmt.Errorf("dialog: no picker helper found: %w", apperr.ErrUnavailable)
}

func pickerCommands(folder bool) [][]string {
	var commands [][]string

	if runtime.GOOS == "darwin" {
		script := `POSIX path of (choose file of type {` + osascriptTypes() + `})`
		if folder {
			script = `POSIX path of (choose folder)`
		}
		commands = append(commands, []string{"osascript", "-e", script})
	}

	zenity := []string{"zenity", "--file-selection"}
	if folder {
		zenity = append(zenity, "--directory")
	} else {
		zenity = append(zenity, "--file-filter=Markdown | "+zenityPatterns())
	}
	commands = append(commands, zenity)

	kdialog := []string{"kdialog"}
	if folder {
		kdialog = append(kdialog, "--getexistingdirectory", ".")
	} else {
		kdialog = append(kdialog, "--getopenfilename", ".", kdialogFilter())
	}
	commands = append(commands, kdialog)

	return commands
}

func zenityPatterns() string {
	exts := launch.MarkdownExtensions()
	patterns := make([]string, len(exts))
	for i, ext := range exts {
		patterns[i] = "*." + ext
	}
	return strings.Join(patterns, " ")
}

func kdialogFilter() string {
	return "Markdown (" + zenityPatterns() + ")"
}

func osascriptTypes() string {
	exts := launch.MarkdownExtensions()
	quoted := make([]string, len(exts))
	for i, ext := range exts {
		quoted[i] = `"` + ext + `"`
	}
	return strings.Join(quoted, ", ")
}
