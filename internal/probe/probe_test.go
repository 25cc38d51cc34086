package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLog() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)

	return log
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "sleep ok", cfg: Config{Name: "s", Type: TypeSleep, Duration: time.Millisecond}},
		{name: "http ok", cfg: Config{Name: "h", Type: TypeHTTP, Target: "http://localhost"}},
		{name: "command ok", cfg: Config{Name: "c", Type: TypeCommand, Command: []string{"true"}}},
		{name: "missing name", cfg: Config{Type: TypeSleep}, wantErr: "probe name is required"},
		{name: "sleep no duration", cfg: Config{Name: "s", Type: TypeSleep}, wantErr: "duration must be positive"},
		{name: "http no target", cfg: Config{Name: "h", Type: TypeHTTP}, wantErr: "target is required"},
		{name: "command empty", cfg: Config{Name: "c", Type: TypeCommand}, wantErr: "command is required"},
		{name: "unknown type", cfg: Config{Name: "x", Type: "ftp"}, wantErr: `unknown type "ftp"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, time.Second, cfg.Interval)
	assert.Equal(t, 1, cfg.Concurrency)
}

func TestSleepProbe(t *testing.T) {
	p, err := New(testLog(), Config{Name: "nap", Type: TypeSleep, Duration: 5 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, "nap", p.Name())

	start := time.Now()
	require.NoError(t, p.Run(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Run(ctx), context.Canceled)
}

func TestHTTPProbe(t *testing.T) {
	var ua string

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	ok, err := New(testLog(), Config{Name: "ok", Type: TypeHTTP, Target: server.URL + "/ok"})
	require.NoError(t, err)
	require.NoError(t, ok.Run(context.Background()))
	assert.Equal(t, "proftimer/dev", ua)

	broken, err := New(testLog(), Config{Name: "broken", Type: TypeHTTP, Target: server.URL + "/broken"})
	require.NoError(t, err)

	err = broken.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 503")
}

func TestCommandProbe(t *testing.T) {
	ok, err := New(testLog(), Config{Name: "true", Type: TypeCommand, Command: []string{"true"}})
	require.NoError(t, err)
	assert.NoError(t, ok.Run(context.Background()))

	fail, err := New(testLog(), Config{Name: "false", Type: TypeCommand, Command: []string{"false"}})
	require.NoError(t, err)
	assert.Error(t, fail.Run(context.Background()))
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(testLog(), Config{Name: "bad", Type: TypeSleep})
	require.Error(t, err)
}
