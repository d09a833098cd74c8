package launch

import "strings"

// Theme identifiers understood by the shell.
const (
	ThemeDark  = "vscode-dark"
	ThemeLight = "vscode-light"
)

// StartupOptions carries the user-requested initial UI state alongside a
// launch target. Each field is independently present-or-absent; only the
// first instance's options become the process-wide startup snapshot, later
// invocations broadcast theirs transiently.
type StartupOptions struct {
	Theme       *string `json:"theme,omitempty"`
	TocOpen     *bool   `json:"tocOpen,omitempty"`
	AutoRefresh *bool   `json:"autoRefresh,omitempty"`
}

// IsEmpty reports whether no option was supplied.
func (o StartupOptions) IsEmpty() bool {
	return o.Theme == nil && o.TocOpen == nil && o.AutoRefresh == nil
}

// parseThemeValue maps user-facing theme names onto shell theme identifiers.
func parseThemeValue(value string) (string, bool) {
	switch strings.ToLower(value) {
	case "dark", ThemeDark:
		return ThemeDark, true
	case "light", ThemeLight:
		return ThemeLight, true
	}
	return "", false
}

// parseToggleValue accepts the fixed boolean vocabulary, case-insensitively.
func parseToggleValue(value string) (bool, bool) {
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on", "open", "enabled":
		return true, true
	case "0", "false", "no", "off", "closed", "close", "disabled":
		return false, true
	}
	return false, false
}
