package dirhash

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Logger writes leveled verbose and debug output, normally to stderr.
// A nil *Logger is valid and discards everything.
type Logger struct {
	out        io.Writer
	level      int
	debugFlags map[string]bool
}

// NewLogger creates a logger writing to w (stderr when nil)
func NewLogger(w io.Writer, level int, debugFlags string) *Logger {
	if w == nil {
		w = os.Stderr
	}
	l := &Logger{out: w, level: level}
	l.SetDebugFlags(debugFlags)
	return l
}

// Level returns the current verbose level
func (l *Logger) Level() int {
	if l == nil {
		return 0
	}
	return l.level
}

// Enter logs function entry at level 3+ and returns a defer function for exit logging
func (l *Logger) Enter() func() {
	if l.Level() < 3 {
		return func() {} // No-op
	}

	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return func() {}
	}

	funcName := runtime.FuncForPC(pc).Name()
	// Strip package prefix for cleaner output
	if idx := strings.LastIndex(funcName, "."); idx != -1 {
		funcName = funcName[idx+1:]
	}

	fmt.Fprintf(l.out, "[TRACE] Entering function: %s\n", funcName)

	return func() {
		fmt.Fprintf(l.out, "[TRACE] Exiting function: %s\n", funcName)
	}
}

// VerboseLog logs a message at the specified verbose level
func (l *Logger) VerboseLog(level int, format string, args ...interface{}) {
	if l.Level() < level {
		return
	}
	fmt.Fprintf(l.out, "[VERBOSE-%d] ", level)
	fmt.Fprintf(l.out, format, args...)
	if !strings.HasSuffix(format, "\n") {
		fmt.Fprintf(l.out, "\n")
	}
}

// Debugf writes an unprefixed line when the debug flag is enabled
func (l *Logger) Debugf(flag string, format string, args ...interface{}) {
	if !l.IsDebugEnabled(flag) {
		return
	}
	fmt.Fprintf(l.out, format, args...)
	if !strings.HasSuffix(format, "\n") {
		fmt.Fprintf(l.out, "\n")
	}
}

// SetDebugFlags sets the debug flags from a comma-separated string
// Supports both simple flags ("walk,hash") and key:value format ("walk:true,hash:false")
func (l *Logger) SetDebugFlags(flagsStr string) {
	l.debugFlags = ParseDebugFlags(flagsStr)
}

// ParseDebugFlags parses a debug flag string into a flag map
func ParseDebugFlags(flagsStr string) map[string]bool {
	flags := make(map[string]bool)
	if flagsStr == "" {
		return flags
	}

	for _, flag := range strings.Split(flagsStr, ",") {
		flag = strings.TrimSpace(flag)
		if flag == "" {
			continue
		}

		parts := strings.SplitN(flag, ":", 2)
		flagName := strings.ToLower(parts[0])
		flagValue := true // Default to true for simple flag names

		if len(parts) > 1 {
			switch strings.ToLower(parts[1]) {
			case "true", "1", "yes", "on":
				flagValue = true
			case "false", "0", "no", "off":
				flagValue = false
			default:
				flagValue = true
			}
		}

		flags[flagName] = flagValue
	}
	return flags
}

// IsDebugEnabled returns true if the specified debug flag is enabled.
// The "all" flag enables every category.
func (l *Logger) IsDebugEnabled(flag string) bool {
	if l == nil || l.debugFlags == nil {
		return false
	}
	if enabled, ok := l.debugFlags[strings.ToLower(flag)]; ok {
		return enabled
	}
	return l.debugFlags["all"]
}
