package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerOutput(t *testing.T) {
	defer SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	l := NewLogger(&buf)

	SetGlobalLevel(zerolog.InfoLevel)
	l.Debugf("hidden %d", 1)
	l.Warnf("run %s has no jar", "r1")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("debug message written at info level")
	}
	if !strings.Contains(buf.String(), "run r1 has no jar") || !strings.Contains(buf.String(), "WRN") {
		t.Errorf("warn message missing: %q", buf.String())
	}

	buf.Reset()
	SetGlobalLevel(zerolog.DebugLevel)
	l.Debug().Str("tag", "r2").Msg("run created")
	if !strings.Contains(buf.String(), "run created") || !strings.Contains(buf.String(), "r2") {
		t.Errorf("debug event missing: %q", buf.String())
	}

	buf.Reset()
	SetGlobalLevel(zerolog.ErrorLevel)
	l.Info().Msg("quiet")
	l.Error().Str("file", "00-r1.props").Msg("write failed")
	if strings.Contains(buf.String(), "quiet") || !strings.Contains(buf.String(), "write failed") {
		t.Errorf("error level filtering wrong: %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Warnf("nothing %s", "here")
	l.Warn().Msg("nothing")
}
