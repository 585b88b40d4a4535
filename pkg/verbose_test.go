package dirhash

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetDebugFlags(t *testing.T) {
	tests := []struct {
		name            string
		input           string
		expectedWalk    bool
		expectedHash    bool
		expectedSquash  bool
		expectedResolve bool
	}{
		{
			name:  "empty string",
			input: "",
		},
		{
			name:         "single option",
			input:        "walk",
			expectedWalk: true,
		},
		{
			name:            "multiple options",
			input:           "walk,hash,squash,resolve",
			expectedWalk:    true,
			expectedHash:    true,
			expectedSquash:  true,
			expectedResolve: true,
		},
		{
			name:         "options with values",
			input:        "walk:true,hash:false,squash:1,resolve:0",
			expectedWalk: true, expectedSquash: true,
		},
		{
			name:            "whitespace handling",
			input:           " walk , resolve ",
			expectedWalk:    true,
			expectedResolve: true,
		},
		{
			name:         "case insensitive",
			input:        "Walk,HASH",
			expectedWalk: true,
			expectedHash: true,
		},
		{
			name:            "all with exception",
			input:           "all,hash:false",
			expectedWalk:    true,
			expectedSquash:  true,
			expectedResolve: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLogger(&bytes.Buffer{}, 0, tt.input)

			if l.IsDebugEnabled(DebugWalk) != tt.expectedWalk {
				t.Errorf("walk: expected %v, got %v", tt.expectedWalk, l.IsDebugEnabled(DebugWalk))
			}
			if l.IsDebugEnabled(DebugHash) != tt.expectedHash {
				t.Errorf("hash: expected %v, got %v", tt.expectedHash, l.IsDebugEnabled(DebugHash))
			}
			if l.IsDebugEnabled(DebugSquash) != tt.expectedSquash {
				t.Errorf("squash: expected %v, got %v", tt.expectedSquash, l.IsDebugEnabled(DebugSquash))
			}
			if l.IsDebugEnabled(DebugResolve) != tt.expectedResolve {
				t.Errorf("resolve: expected %v, got %v", tt.expectedResolve, l.IsDebugEnabled(DebugResolve))
			}
		})
	}
}

func TestDebugFlagValueParsing(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"flag:true", true},
		{"flag:TRUE", true},
		{"flag:yes", true},
		{"flag:on", true},
		{"flag:false", false},
		{"flag:no", false},
		{"flag:off", false},
		{"flag:unknown", true}, // Default to true for unknown values
		{"flag", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseDebugFlags(tt.input)["flag"]; got != tt.expected {
				t.Errorf("ParseDebugFlags(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestVerboseLogLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, 2, "")

	l.VerboseLog(1, "one %d", 1)
	l.VerboseLog(2, "two\n")
	l.VerboseLog(3, "three")

	expected := "[VERBOSE-1] one 1\n[VERBOSE-2] two\n"
	if buf.String() != expected {
		t.Errorf("got %q, expected %q", buf.String(), expected)
	}
}

func TestDebugfAndEnter(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, 3, "walk")

	l.Debugf(DebugWalk, "### %s %s", "/a", TypeRegular)
	l.Debugf(DebugHash, "hidden")
	func() {
		defer l.Enter()()
	}()

	out := buf.String()
	if !strings.HasPrefix(out, "### /a regular file\n") {
		t.Errorf("missing debug line, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("disabled debug flag produced output")
	}
	if !strings.Contains(out, "[TRACE] Entering function:") || !strings.Contains(out, "[TRACE] Exiting function:") {
		t.Errorf("missing trace lines, got %q", out)
	}
}

func TestNilLogger(t *testing.T) {
	var l *Logger
	l.VerboseLog(1, "nothing")
	l.Debugf(DebugWalk, "nothing")
	l.Enter()()
	if l.Level() != 0 || l.IsDebugEnabled(DebugWalk) {
		t.Error("nil logger should be silent")
	}
}
