package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestDiscard(t *testing.T) {
	t.Parallel()
	log := Discard()
	log.Error("dropped", "key", "value")
	log.With("a", 1).WithGroup("g").Info("also dropped")
}

func TestJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	JSON(&buf, slog.LevelInfo).Info("assembled", "bytes", 196)

	out := buf.String()
	for _, want := range []string{`"msg":"assembled"`, `"bytes":196`, `"level":"INFO"`, `"source":`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in output, got: %s", want, out)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := Text(&buf, slog.LevelWarn)
	log.Info("hidden")
	log.Debug("hidden")
	if buf.Len() > 0 {
		t.Fatalf("expected no output below warn, got: %s", buf.String())
	}
	log.Warn("shown")
	if !strings.Contains(buf.String(), "msg=shown") {
		t.Fatalf("expected warn record, got: %s", buf.String())
	}
}

func TestSetup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   string
	}{
		{"json", `"msg":"hello"`},
		{"text", "msg=hello"},
		{"pretty", "INFO  hello"},
		{"", "INFO  hello"},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		log, err := Setup(Options{Format: tc.format, Level: "info", Writer: &buf})
		if err != nil {
			t.Fatalf("Setup(%q): %v", tc.format, err)
		}
		log.Info("hello")
		if !strings.Contains(buf.String(), tc.want) {
			t.Fatalf("Setup(%q): expected %q, got: %s", tc.format, tc.want, buf.String())
		}
	}
}

func TestSetupRejectsUnknownValues(t *testing.T) {
	t.Parallel()
	if _, err := Setup(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, err := Setup(Options{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), Text(&buf, slog.LevelInfo))
	FromContext(ctx).Info("via context")
	if !strings.Contains(buf.String(), "via context") {
		t.Fatalf("expected message via context logger, got: %s", buf.String())
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext without a logger returned nil")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  slog.Level
		err   bool
	}{
		{"debug", slog.LevelDebug, false},
		{"DEBUG", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.input)
		if (err != nil) != tc.err {
			t.Errorf("ParseLevel(%q): err = %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q): got %v want %v", tc.input, got, tc.want)
		}
	}
}

func TestIsTerminalBuffer(t *testing.T) {
	t.Parallel()
	if IsTerminal(&bytes.Buffer{}) {
		t.Fatal("a bytes.Buffer is not a terminal")
	}
}

func TestPrettyPlain(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := New(NewPrettyHandler(&buf, nil))
	log.Info("wrote", "path", "scene.tmf", "note", "two words")

	out := buf.String()
	if strings.Contains(out, "\033[") {
		t.Fatalf("uncolored handler emitted escapes: %q", out)
	}
	if !strings.Contains(out, "INFO  wrote path=scene.tmf") {
		t.Fatalf("unexpected line: %s", out)
	}
	if !strings.Contains(out, `note="two words"`) {
		t.Fatalf("expected quoted value, got: %s", out)
	}
}

func TestPrettyColor(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := New(NewPrettyHandler(&buf, &PrettyOptions{Color: true}))
	log.Error("boom")
	if !strings.Contains(buf.String(), ansiRed) {
		t.Fatalf("expected red level, got: %q", buf.String())
	}
}

func TestPrettyEnabled(t *testing.T) {
	t.Parallel()
	h := NewPrettyHandler(&bytes.Buffer{}, &PrettyOptions{Level: slog.LevelWarn})
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

func TestPrettyGroups(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)
	if h.WithGroup("") != h {
		t.Fatal("empty group should return the same handler")
	}

	log := slog.New(h.WithAttrs([]slog.Attr{slog.String("svc", "asm")}).WithGroup("a").WithGroup("b"))
	log.Info("nested", "key", "val", slog.Group("blk", "tag", "MESH"))

	out := buf.String()
	for _, want := range []string{"svc=asm", "a.b.key=val", "a.b.blk.tag=MESH"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in output, got: %s", want, out)
		}
	}
}

func TestNeedsQuoting(t *testing.T) {
	t.Parallel()
	for s, want := range map[string]bool{
		"simple":      false,
		"":            false,
		"has space":   true,
		"tab\there":   true,
		`quote"d`:     true,
		"key=value":   true,
		"dash-ok_too": false,
	} {
		if got := needsQuoting(s); got != want {
			t.Errorf("needsQuoting(%q) = %v, want %v", s, got, want)
		}
	}
}
