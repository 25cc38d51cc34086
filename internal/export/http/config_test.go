package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{Enabled: true, Address: "http://localhost"}
	cfg.ApplyDefaults()

	assert.Equal(t, CompressionGzip, cfg.Compression)
	assert.Equal(t, 512, cfg.BatchSize)
	assert.Equal(t, 5*time.Second, cfg.BatchTimeout)
	assert.Equal(t, 30*time.Second, cfg.ExportTimeout)
	assert.Equal(t, 8192, cfg.MaxQueueSize)
	assert.Equal(t, 1, cfg.Workers)
	assert.True(t, cfg.IsKeepAlive())
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "disabled skips checks",
			cfg:  Config{},
		},
		{
			name:    "missing address",
			cfg:     Config{Enabled: true, BatchSize: 1, MaxQueueSize: 1, Workers: 1},
			wantErr: "http address is required",
		},
		{
			name:    "batch larger than queue",
			cfg:     Config{Enabled: true, Address: "x", BatchSize: 10, MaxQueueSize: 5, Workers: 1},
			wantErr: "batch_size cannot be greater than max_queue_size",
		},
		{
			name:    "no workers",
			cfg:     Config{Enabled: true, Address: "x", BatchSize: 1, MaxQueueSize: 1},
			wantErr: "workers must be greater than 0",
		},
		{
			name: "bad compression",
			cfg: Config{
				Enabled: true, Address: "x", BatchSize: 1, MaxQueueSize: 1,
				Workers: 1, Compression: "lz4",
			},
			wantErr: "invalid compression type: lz4",
		},
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
