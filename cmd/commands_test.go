package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"emireminder/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func useTempStore(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", path)
	t.Setenv("SCHEDULER_MODE", "off")
	t.Setenv("REDIS_ADDR", "")
	return path
}

func TestTokenCmd(t *testing.T) {
	useTempStore(t)
	t.Setenv("JWT_SECRET", "test-secret")

	out, err := runCmd(t, "token", "ops-1", "--role", "admin")
	require.NoError(t, err)

	claims, err := utils.ParseClaims(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ops-1", claims.Subject)
	assert.Equal(t, utils.RoleAdmin, claims.Role)
}

func TestTokenCmdRequiresUser(t *testing.T) {
	_, err := runCmd(t, "token")
	assert.Error(t, err)
}

func TestMigrateCmd(t *testing.T) {
	useTempStore(t)

	out, err := runCmd(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "storage sqlite is up to date")
}

func TestSweepCmdOnEmptyStore(t *testing.T) {
	useTempStore(t)

	out, err := runCmd(t, "sweep")
	require.NoError(t, err)
	assert.Contains(t, out, `"due": 0`)
	assert.Contains(t, out, `"persisted": true`)
}

func TestMigrateRejectsUnknownDriver(t *testing.T) {
	useTempStore(t)
	t.Setenv("DB_DRIVER", "postgres")

	_, err := runCmd(t, "migrate")
	assert.Error(t, err)
}
