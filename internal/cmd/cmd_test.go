package cmd

import (
	"bytes"
	"ctchen222/tictactoe-solo/internal/config"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot_Commands(t *testing.T) {
	root := Root()
	for _, name := range []string{"serve", "play"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestPlay_RunsSession(t *testing.T) {
	root := Root()
	var out bytes.Buffer
	root.SetArgs([]string{"play"})
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})

	play, _, err := root.Find([]string{"play"})
	require.NoError(t, err)
	play.SetIn(strings.NewReader("1 1\nquit\n"))

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Player O's turn")
	assert.Contains(t, out.String(), "Bye!")
}

func TestServe_RejectsBadConfig(t *testing.T) {
	t.Setenv("STORE", "sqlite")

	root := Root()
	root.SetArgs([]string{"serve"})
	err := root.Execute()
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestServe_RejectsMissingConfigFile(t *testing.T) {
	root := Root()
	root.SetArgs([]string{"serve", "--config", filepath.Join(t.TempDir(), "absent.yml")})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	err := root.Execute()
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestJWTSecret(t *testing.T) {
	configured, err := jwtSecret(config.Auth{JWTSecret: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), configured)

	a, err := jwtSecret(config.Auth{})
	require.NoError(t, err)
	b, err := jwtSecret(config.Auth{})
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
