package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	require.Equal(t, "8008", cfg.Server.Port)
	require.Equal(t, 8, cfg.Auth.MinPasswordLen)
	require.Equal(t, 30*time.Second, cfg.Auth.UserCacheTTL)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(
		"server:\n  port: \"9000\"\nauth:\n  admin_invite_code: s3cret\n  min_password_len: 12\n"), 0o644))

	t.Setenv("SERVER_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "9100", cfg.Server.Port, "env wins over file")
	require.Equal(t, "s3cret", cfg.Auth.AdminInviteCode)
	require.Equal(t, 12, cfg.Auth.MinPasswordLen)
	require.Equal(t, ":9100", cfg.Addr())
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("server: [broken"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}
