package launch

import (
	"fmt"
	"log/slog"
	"strings"
)

// Version is stamped at build time via ldflags.
var Version = "dev"

const appName = "mudkip"

// Parsed is the outcome of scanning one argument vector.
type Parsed struct {
	Target         *Target
	Options        StartupOptions
	ExitAfterPrint bool
}

// ParseArgs scans args left to right with one token of lookahead. It never
// fails: malformed option values are logged and skipped, unrecognized flags
// are ignored, and at most one positional launch target is retained. Once a
// help or version flag has printed, the remaining tokens are inert.
//
// Re-invocations of the program forward their argument vector here too, so
// parsing must behave identically at cold start and at runtime.
func ParseArgs(args []string) Parsed {
	var parsed Parsed
	positionalOnly := false

	for i := 0; i < len(args); i++ {
		if parsed.ExitAfterPrint {
			break
		}
		arg := args[i]

		if !positionalOnly {
			if arg == "--" {
				positionalOnly = true
				continue
			}

			switch arg {
			case "-h", "--help":
				printHelp()
				parsed.ExitAfterPrint = true
				continue
			case "-V", "--version":
				printVersion()
				parsed.ExitAfterPrint = true
				continue
			case "--dark":
				parsed.Options.Theme = ptr(ThemeDark)
				continue
			case "--light":
				parsed.Options.Theme = ptr(ThemeLight)
				continue
			case "--toc-open":
				parsed.Options.TocOpen = ptr(true)
				continue
			case "--toc-closed", "--toc-close", "--no-toc":
				parsed.Options.TocOpen = ptr(false)
				continue
			case "--no-watch", "--watch-off", "--no-auto-refresh":
				parsed.Options.AutoRefresh = ptr(false)
				continue
			case "--theme":
				// A following token that looks like a flag is not consumed,
				// so one malformed flag cannot swallow an unrelated one.
				if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
					setTheme(&parsed.Options, args[i+1])
					i++
				} else {
					slog.Warn("launch: ignoring --theme without a value")
				}
				continue
			case "--toc":
				if i+1 < len(args) {
					if v, ok := parseToggleValue(args[i+1]); ok {
						parsed.Options.TocOpen = ptr(v)
						i++
						continue
					}
				}
				parsed.Options.TocOpen = ptr(true)
				continue
			case "--watch", "--auto-refresh":
				if i+1 < len(args) {
					if v, ok := parseToggleValue(args[i+1]); ok {
						parsed.Options.AutoRefresh = ptr(v)
						i++
						continue
					}
				}
				parsed.Options.AutoRefresh = ptr(true)
				continue
			}

			if value, ok := strings.CutPrefix(arg, "--theme="); ok {
				setTheme(&parsed.Options, value)
				continue
			}
			if value, ok := strings.CutPrefix(arg, "--toc="); ok {
				if v, valid := parseToggleValue(value); valid {
					parsed.Options.TocOpen = ptr(v)
				} else {
					slog.Warn("launch: ignoring unsupported --toc value",
						slog.String("value", value))
				}
				continue
			}
			if value, ok := cutWatchPrefix(arg); ok {
				if v, valid := parseToggleValue(value); valid {
					parsed.Options.AutoRefresh = ptr(v)
				} else {
					slog.Warn("launch: ignoring unsupported watch value",
						slog.String("value", value))
				}
				continue
			}

			// Unrecognized flag: skipped without error.
			if strings.HasPrefix(arg, "-") {
				continue
			}
		}

		// Positional: the first token that classifies wins.
		if parsed.Target == nil {
			if target, ok := Classify(arg); ok {
				parsed.Target = &target
			}
		}
	}

	return parsed
}

func setTheme(opts *StartupOptions, value string) {
	if theme, ok := parseThemeValue(value); ok {
		opts.Theme = ptr(theme)
		return
	}
	slog.Warn("launch: ignoring unsupported --theme value; expected dark or light",
		slog.String("value", value))
}

func cutWatchPrefix(arg string) (string, bool) {
	if value, ok := strings.CutPrefix(arg, "--watch="); ok {
		return value, true
	}
	return strings.CutPrefix(arg, "--auto-refresh=")
}

func printHelp() {
	fmt.Printf(`%s %s

Usage:
  %s [OPTIONS] [FILE_OR_FOLDER]

Options:
  --theme <dark|light>      Set startup theme.
  --dark                    Alias for --theme dark.
  --light                   Alias for --theme light.
  --toc[=<open|closed>]     Open TOC drawer on launch (default when no value: open).
  --toc-open                Open TOC drawer on launch.
  --toc-closed              Close TOC drawer on launch.
  --watch[=<on|off>]        Enable auto-refresh watch on launch (default when no value: on).
  --no-watch                Disable auto-refresh watch on launch.
  -h, --help                Show this help and exit.
  -V, --version             Show version and exit.
`, appName, Version, appName)
}

func printVersion() {
	fmt.Printf("%s %s\n", appName, Version)
}

func ptr[T any](v T) *T { return &v }
