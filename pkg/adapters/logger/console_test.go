package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/user/heiftile/pkg/ports"
)

func TestConsoleLogger_LevelFilter(t *testing.T) {
	tests := []struct {
		level   ports.LogLevel
		wantOut int
		wantErr int
	}{
		{ports.LevelDebug, 2, 2},
		{ports.LevelInfo, 1, 2},
		{ports.LevelWarn, 0, 2},
		{ports.LevelError, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var out, errOut bytes.Buffer
			l := NewWriter(tt.level, &out, &errOut)

			l.Debug("debug %d", 1)
			l.Info("info %d", 2)
			l.Warn("warn %d", 3)
			l.Error("error %d", 4)

			if got := strings.Count(out.String(), "\n"); got != tt.wantOut {
				t.Errorf("stdout lines = %d, want %d", got, tt.wantOut)
			}
			if got := strings.Count(errOut.String(), "\n"); got != tt.wantErr {
				t.Errorf("stderr lines = %d, want %d", got, tt.wantErr)
			}
		})
	}
}

func TestConsoleLogger_Component(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWriter(ports.LevelDebug, &out, &errOut).WithComponent("nvdec")

	l.Info("test message %d", 3)

	if got := out.String(); got != "[nvdec] test message 3\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestNew_Quiet(t *testing.T) {
	if _, ok := New(ports.LevelQuiet).(*NoopLogger); !ok {
		t.Error("expected NoopLogger for quiet level")
	}
	if _, ok := New(ports.LevelInfo).(*ConsoleLogger); !ok {
		t.Error("expected ConsoleLogger for info level")
	}
}
