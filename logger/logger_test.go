// SPDX-License-Identifier: GPL-3.0-or-later

package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevel_SetByName(t *testing.T) {
	defer Level.Set(slog.LevelInfo)

	tests := map[string]struct {
		name    string
		wantOK  bool
		wantLvl slog.Level
	}{
		"error":         {name: "err", wantOK: true, wantLvl: slog.LevelError},
		"warning":       {name: "Warning", wantOK: true, wantLvl: slog.LevelWarn},
		"notice":        {name: "notice", wantOK: true, wantLvl: levelNotice},
		"debug":         {name: " debug ", wantOK: true, wantLvl: slog.LevelDebug},
		"critical":      {name: "critical", wantOK: true, wantLvl: levelDisable},
		"unknown keeps": {name: "verbose", wantOK: false, wantLvl: slog.LevelInfo},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			Level.Set(slog.LevelInfo)

			assert.Equal(t, test.wantOK, Level.SetByName(test.name))
			assert.Equal(t, test.wantLvl, Level.lvl.Level())
		})
	}
}

func TestLogger_Output(t *testing.T) {
	defer Level.Set(slog.LevelInfo)
	Level.Set(slog.LevelInfo)

	var buf bytes.Buffer
	l := NewWithWriter(&buf).With("table", "daemonsets")

	l.Debugf("hidden %d", 1)
	l.Infof("rows=%d", 3)
	l.Warning("slow query")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=info")
	assert.Contains(t, out, "rows=3")
	assert.Contains(t, out, "level=warn")
	assert.Contains(t, out, "table=daemonsets")
}

func TestLogger_Mute(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	l.Mute()
	l.Error("muted")
	assert.Empty(t, buf.String())

	l.Unmute()
	l.Error("unmuted")
	assert.Contains(t, buf.String(), "unmuted")
}

func TestLogger_NilSafe(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Infof("nil logger %s", "ok") })
}
