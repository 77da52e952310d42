package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filesend-bot/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("YADISK_TOKEN", "token")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "filesend-bot", cfg.ServiceName)
	assert.Equal(t, config.StorageBackendYandexDisk, cfg.StorageBackend)
	assert.Equal(t, "/FilesSendBot", cfg.StorageRoot)
	assert.Equal(t, 3, cfg.StorageRetryAttempts)
	assert.Equal(t, 5*time.Second, cfg.SimilarityTimeout)
	assert.Equal(t, 30.0, cfg.SimilarityThreshold)
	assert.Equal(t, config.SessionBackendMemory, cfg.SessionBackend)
	assert.Equal(t, "[surname]_PKS12_[type]", cfg.DefaultFileTemplate)
	assert.Equal(t, ":8190", cfg.Addr())
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{
			name:    "yadisk without token",
			env:     map[string]string{"STORAGE_BACKEND": "yadisk", "YADISK_TOKEN": ""},
			wantErr: true,
		},
		{
			name:    "unknown backend",
			env:     map[string]string{"STORAGE_BACKEND": "ftp"},
			wantErr: true,
		},
		{
			name:    "s3 without bucket",
			env:     map[string]string{"STORAGE_BACKEND": "s3"},
			wantErr: true,
		},
		{
			name:    "redis sessions without url",
			env:     map[string]string{"STORAGE_BACKEND": "local", "SESSION_BACKEND": "redis"},
			wantErr: true,
		},
		{
			name:    "relative storage root",
			env:     map[string]string{"STORAGE_BACKEND": "local", "STORAGE_ROOT": "files"},
			wantErr: true,
		},
		{
			name:    "local backend",
			env:     map[string]string{"STORAGE_BACKEND": "local", "LOCAL_STORAGE_PATH": t.TempDir()},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRequireBot(t *testing.T) {
	cfg := &config.Config{}
	assert.Error(t, cfg.RequireBot())

	cfg.BotToken = "123:abc"
	assert.NoError(t, cfg.RequireBot())
}
