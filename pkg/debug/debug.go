// Package debug provides category-based debug logging for the storefront.
//
// Two orthogonal controls:
//   - Categories (WHAT to debug): STOREFRONT_DEBUG env or log.debug in config
//   - Levels (HOW MUCH detail): log.level in config
//
// Usage:
//
//	debug.Log("auth", "credential resolved", "transport", t, "user_id", id)
//	if debug.Enabled("storage") { /* expensive formatting */ }
//
// Categories: auth, users, storage, transport, config, all.
// Levels: error, warn, info, debug, trace.
package debug

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// EnvVar names the environment variable holding the enabled categories.
const EnvVar = "STOREFRONT_DEBUG"

// LevelTrace is below slog.LevelDebug for maximum verbosity.
const LevelTrace = slog.LevelDebug - 4

// categories holds the set of enabled debug categories.
// Read-only after Init.
var categories map[string]bool

func init() {
	categories = parseCategories(os.Getenv(EnvVar))
}

// Init replaces the enabled categories. Called once at startup, before
// the server accepts requests.
func Init(configCategories string) {
	categories = parseCategories(configCategories)
}

// Enabled reports whether debug output is active for the given category.
func Enabled(category string) bool {
	return categories["all"] || categories[category]
}

// Log emits a debug message for the given category through the default
// logger. It is a no-op when the category is disabled.
func Log(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Debug(msg, append([]any{"debug", category}, args...)...)
}

// Trace emits a trace-level message for the given category.
// Only visible when the logger level is trace.
func Trace(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Log(context.Background(), LevelTrace, msg, append([]any{"debug", category}, args...)...)
}

// ParseLevel converts a level string to a slog.Level. Unknown values
// map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Categories returns the enabled categories in sorted order.
func Categories() []string {
	result := make([]string, 0, len(categories))
	for k := range categories {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

func parseCategories(s string) map[string]bool {
	m := make(map[string]bool)
	if s == "" {
		return m
	}
	for _, cat := range strings.Split(s, ",") {
		cat = strings.TrimSpace(strings.ToLower(cat))
		if cat != "" {
			m[cat] = true
		}
	}
	return m
}
