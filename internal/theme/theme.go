// Package theme detects the operating system's light/dark appearance.
package theme

import (
	"context"
	"os/exec"
	"runtime"
	"strings"

	"github.com/starford/mudkip/internal/launch"
)

// Detector probes the host desktop for its color scheme. The zero value is
// ready to use.
type Detector struct{}

// System returns the shell theme matching the OS appearance. Detection
// failure reports dark, the safer default for a reading surface.
func (Detector) System(ctx context.Context) string {
	switch runtime.GOOS {
	case "darwin":
		// The key is absent entirely in light mode, so a non-zero exit
		// already means light.
		out, err := exec.CommandContext(ctx, "defaults", "read", "-g", "AppleInterfaceStyle").Output()
		if err != nil {
			return launch.ThemeLight
		}
		if strings.Contains(strings.ToLower(string(out)), "dark") {
			return launch.ThemeDark
		}
		return launch.ThemeLight

	case "linux":
		out, err := exec.CommandContext(ctx, "gsettings", "get", "org.gnome.desktop.interface", "color-scheme").Output()
		if err != nil {
			return launch.ThemeDark
		}
		if strings.Contains(strings.ToLower(string(out)), "dark") {
			return launch.ThemeDark
		}
		return launch.ThemeLight
	}

	return launch.ThemeDark
}
