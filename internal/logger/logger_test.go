package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{level: "debug", wantDebug: true, wantInfo: true, wantWarn: true},
		{level: "info", wantInfo: true, wantWarn: true},
		{level: "warn", wantWarn: true},
		{level: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewWithOutput(tt.level, &buf)

			l.Debug("d %d", 1)
			l.Info("i %d", 2)
			l.Warn("w %d", 3)
			l.Error("e %d", 4)

			out := buf.String()
			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("[DEBUG] d 1")))
			assert.Equal(t, tt.wantInfo, bytes.Contains(buf.Bytes(), []byte("[INFO] i 2")))
			assert.Equal(t, tt.wantWarn, bytes.Contains(buf.Bytes(), []byte("[WARN] w 3")))
			assert.Contains(t, out, "[ERROR] e 4")
		})
	}
}

func TestLevelIsCaseInsensitive(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput("DEBUG", &buf)
	l.Debug("hello")
	assert.Equal(t, "debug", l.Level())
	assert.Contains(t, buf.String(), "[DEBUG] hello")
}
