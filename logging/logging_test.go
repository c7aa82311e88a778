package logging

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    log.Level
		wantErr bool
	}{
		{"", log.InfoLevel, false},
		{"debug", log.DebugLevel, false},
		{"WARN", log.WarnLevel, false},
		{" error ", log.ErrorLevel, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetupFile(t *testing.T) {
	std := log.StandardLogger()
	prevOut, prevLevel, prevFormatter := std.Out, std.GetLevel(), std.Formatter
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetLevel(prevLevel)
		log.SetFormatter(prevFormatter)
	})

	path := filepath.Join(t.TempDir(), "activity.log")
	closeFn, err := Setup("debug", path)
	require.NoError(t, err)

	log.WithField("component", "test").Debug("written to file")
	require.NoError(t, closeFn())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "written to file")
	assert.Contains(t, string(b), "component=test")
	assert.Equal(t, log.DebugLevel, log.GetLevel())
}

func TestSetupInvalidLevel(t *testing.T) {
	_, err := Setup("chatty", "")
	assert.Error(t, err)
}
