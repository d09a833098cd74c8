// Package editor hands documents off to an external text editor.
package editor

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/starford/mudkip/internal/apperr"
	"github.com/starford/mudkip/internal/launch"
)

// Launcher spawns the configured editor command. The spawned process is not
// waited on; editing happens outside this process's lifetime.
type Launcher struct {
	// Command is the editor binary. Defaults to "code" when empty.
	Command string
}

// Open launches the editor positioned at path:line. Lines are 1-based; a
// non-positive line means the top of the file. The path must exist and pass
// the markdown allow-list.
func (l Launcher) Open(path string, line int) error {
	target, ok := launch.Classify(path)
	if !ok || target.Kind != launch.KindFile {
		return fmt.Errorf("editor: open %q: %w", path, apperr.ErrNotMarkdown)
	}
	if line <= 0 {
		line = 1
	}

	command := l.Command
	if command == "" {
		command = "code"
	}
	goTo := fmt.Sprintf("%s:%d", target.Path, line)

	if err := trySpawn(command, "-n", "-g", goTo); err == nil {
		return nil
	}
	if runtime.GOOS == "darwin" {
		// The CLI shim may not be on PATH even when the app is installed.
		if err := trySpawn("open", "-a", "Visual Studio Code", "--args", "-n", "-g", goTo); err == nil {
			return nil
		}
	}
	return fmt.Errorf("editor: launch %q: %w", command, apperr.ErrUnavailable)
}

func trySpawn(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the child in the background so it never zombies.
	go cmd.Wait()
	return nil
}
