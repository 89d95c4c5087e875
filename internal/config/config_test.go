package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	content := "PORT=9090\nSTORE_DRIVER=memory\nJWT_SECRET=from-file\nCORS_ALLOWED_ORIGINS=http://localhost:3000, https://gopherrun.app\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, AuthProviderJWT, cfg.AuthProvider)
	assert.Equal(t, []string{"http://localhost:3000", "https://gopherrun.app"}, cfg.AllowedOrigins())
}

func TestLoadConfigEnvironmentWins(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STORE_DRIVER=memory\nJWT_SECRET=from-file\n"), 0o600))
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWTSecret)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory with jwt", Config{StoreDriver: StoreDriverMemory, AuthProvider: AuthProviderJWT, JWTSecret: "s"}, false},
		{"postgres without url", Config{StoreDriver: StoreDriverPostgres, AuthProvider: AuthProviderJWT, JWTSecret: "s"}, true},
		{"jwt without secret", Config{StoreDriver: StoreDriverMemory, AuthProvider: AuthProviderJWT}, true},
		{"firebase without credentials", Config{StoreDriver: StoreDriverMemory, AuthProvider: AuthProviderFirebase}, true},
		{"unknown driver", Config{StoreDriver: "sqlite", AuthProvider: AuthProviderJWT, JWTSecret: "s"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigureLogger(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)

	cfg := &Config{LogLevel: "debug", LogFormat: "json"}
	require.NoError(t, cfg.ConfigureLogger())
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	cfg.LogLevel = "loud"
	assert.Error(t, cfg.ConfigureLogger())
}
