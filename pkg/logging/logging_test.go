package logging

import (
	"bytes"
	"strings"
	"testing"
)

func newBufLogger(level Level) (*Logger, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errw := &bytes.Buffer{}
	l := New(level)
	l.Out = out
	l.Err = errw
	return l, out, errw
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"quiet", Quiet},
		{"QUIET", Quiet},
		{"normal", Normal},
		{"verbose", Verbose},
		{"Debug", Debug},
		{"", Normal},
		{"bogus", Normal},
		{"  verbose  ", Verbose},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	if got := LevelFromEnv(); got != Debug {
		t.Errorf("LevelFromEnv() = %v, want %v", got, Debug)
	}

	t.Setenv(EnvLogLevel, "nonsense")
	if got := LevelFromEnv(); got != Normal {
		t.Errorf("LevelFromEnv() with unknown value = %v, want %v", got, Normal)
	}
}

func TestErrorAlwaysEmits(t *testing.T) {
	l, out, errw := newBufLogger(Quiet)
	l.Errorf("boom: %d", 42)

	if !strings.Contains(errw.String(), "boom: 42") {
		t.Errorf("error output missing message: %q", errw.String())
	}
	if out.Len() != 0 {
		t.Errorf("error wrote to stdout stream: %q", out.String())
	}
}

func TestLevelGating(t *testing.T) {
	tests := []struct {
		name  string
		level Level
		emit  func(l *Logger)
		want  bool
	}{
		{"info suppressed at quiet", Quiet, func(l *Logger) { l.Infof("msg") }, false},
		{"info shown at normal", Normal, func(l *Logger) { l.Infof("msg") }, true},
		{"warning suppressed at quiet", Quiet, func(l *Logger) { l.Warnf("msg") }, false},
		{"warning shown at normal", Normal, func(l *Logger) { l.Warnf("msg") }, true},
		{"success shown at normal", Normal, func(l *Logger) { l.Successf("msg") }, true},
		{"command shown at normal", Normal, func(l *Logger) { l.Commandf("msg") }, true},
		{"verbose suppressed at normal", Normal, func(l *Logger) { l.Verbosef("msg") }, false},
		{"verbose shown at verbose", Verbose, func(l *Logger) { l.Verbosef("msg") }, true},
		{"debug suppressed at verbose", Verbose, func(l *Logger) { l.Debugf(nil, "msg") }, false},
		{"debug shown at debug", Debug, func(l *Logger) { l.Debugf(nil, "msg") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, out, errw := newBufLogger(tt.level)
			tt.emit(l)
			got := strings.Contains(out.String()+errw.String(), "msg")
			if got != tt.want {
				t.Errorf("emitted = %v, want %v (out=%q err=%q)", got, tt.want, out.String(), errw.String())
			}
		})
	}
}

func TestPrintfBypassesLevelGate(t *testing.T) {
	l, out, errw := newBufLogger(Quiet)
	l.Printf("requested output: %s", "report body")

	if !strings.Contains(out.String(), "requested output: report body") {
		t.Errorf("Printf output missing at quiet level: %q", out.String())
	}
	if strings.Contains(out.String(), "[conango]") {
		t.Errorf("Printf output carries the status prefix: %q", out.String())
	}
	if errw.Len() != 0 {
		t.Errorf("Printf wrote to the error stream: %q", errw.String())
	}
}

func TestDebugAppendsErrorDetail(t *testing.T) {
	l, out, _ := newBufLogger(Debug)
	l.Debugf(errFake("root cause"), "operation failed")

	s := out.String()
	if !strings.Contains(s, "operation failed") || !strings.Contains(s, "root cause") {
		t.Errorf("debug output missing message or error detail: %q", s)
	}
}

type errFake string

func (e errFake) Error() string { return string(e) }

func TestPhaseBannerAtNormal(t *testing.T) {
	l, out, _ := newBufLogger(Normal)
	l.EnterPhase("Resolving dependencies")

	if !strings.Contains(out.String(), "Resolving dependencies") {
		t.Errorf("phase banner missing: %q", out.String())
	}
	if l.Phase() != "Resolving dependencies" {
		t.Errorf("Phase() = %q", l.Phase())
	}

	out.Reset()
	l.ExitPhase(true)
	// Exit status is verbose-only.
	if out.Len() != 0 {
		t.Errorf("exit phase printed at normal: %q", out.String())
	}
	if l.Phase() != "" {
		t.Errorf("Phase() after exit = %q, want empty", l.Phase())
	}
}

func TestPhaseExitReportsElapsedAtVerbose(t *testing.T) {
	l, out, _ := newBufLogger(Verbose)
	l.EnterPhase("Installing recipes")
	out.Reset()
	l.ExitPhase(false)

	s := out.String()
	if !strings.Contains(s, "failed") {
		t.Errorf("exit phase missing failure status: %q", s)
	}
	if !strings.Contains(s, "s") {
		t.Errorf("exit phase missing elapsed time: %q", s)
	}
}

func TestExitPhaseWithoutEnterIsNoop(t *testing.T) {
	l, out, _ := newBufLogger(Verbose)
	l.ExitPhase(true)
	if out.Len() != 0 {
		t.Errorf("ExitPhase without EnterPhase emitted output: %q", out.String())
	}
}

func TestOutputTruncationAtVerbose(t *testing.T) {
	long := strings.Repeat("line\n", 20)

	l, out, _ := newBufLogger(Verbose)
	l.Output(long)
	if !strings.Contains(out.String(), "more lines") {
		t.Errorf("verbose output not truncated: %q", out.String())
	}

	l2, out2, _ := newBufLogger(Debug)
	l2.Output(long)
	if strings.Contains(out2.String(), "more lines") {
		t.Errorf("debug output truncated: %q", out2.String())
	}
	if got := strings.Count(out2.String(), "line"); got != 20 {
		t.Errorf("debug output line count = %d, want 20", got)
	}

	l3, out3, _ := newBufLogger(Normal)
	l3.Output(long)
	if out3.Len() != 0 {
		t.Errorf("output shown below verbose: %q", out3.String())
	}
}
