package globalsecret

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/systmms/globalsecrets/internal/config"
)

func TestNewRuntimeLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		runtime   config.Runtime
		err       error
		wantDebug bool
	}{
		{name: "debug on", runtime: config.Runtime{Debug: true}, wantDebug: true},
		{name: "debug off", runtime: config.Runtime{}, wantDebug: false},
		{name: "config error", runtime: config.Runtime{Debug: true}, err: errors.New("bad timeout"), wantDebug: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := newRuntimeLogger(func() (config.Runtime, error) { return tt.runtime, tt.err })
			assert.Equal(t, tt.wantDebug, l.DebugEnabled())
		})
	}
}

func TestNewRuntimeLoggerReadsEnvironment(t *testing.T) {
	t.Setenv("GLOBALSECRETS_DOTENV", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("GLOBALSECRETS_TIMEOUT", "5s")
	t.Setenv("GLOBALSECRETS_DEBUG", "true")

	assert.True(t, newRuntimeLogger(config.LoadRuntime).DebugEnabled())
}
