package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSecrets(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "secrets.json")
	err := os.WriteFile(path, []byte(contents), 0o644)
	require.NoError(t, err)
	return path
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv(EnvUsername, "user@example.com")
	t.Setenv(EnvPassword, "hunter2")

	// a file with placeholders must not shadow the environment
	path := writeSecrets(t, `{"username": "your_username_here", "password": "your_password_here"}`)

	creds, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Credentials{Username: "user@example.com", Password: "hunter2"}, creds)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv(EnvUsername, "")
	t.Setenv(EnvPassword, "")

	path := writeSecrets(t, `{"username": "user@example.com", "password": " hunter2 "}`)
	creds, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "hunter2", creds.Password)
}

func TestLoadMissingEverything(t *testing.T) {
	t.Setenv(EnvUsername, "")
	t.Setenv(EnvPassword, "")

	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.ErrorIs(t, err, ErrMissingCredentials)
}

func TestLoadRejectsPlaceholders(t *testing.T) {
	t.Setenv(EnvUsername, "")
	t.Setenv(EnvPassword, "")

	cases := []string{
		`{"username": "your_username_here", "password": "real"}`,
		`{"username": "real", "password": "your_password_here"}`,
		`{"username": "real", "password": ""}`,
		`{"username": "real", "password": "   "}`,
	}
	for _, contents := range cases {
		_, err := Load(writeSecrets(t, contents))
		require.ErrorIs(t, err, ErrPlaceholderCredentials, "contents %s", contents)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	t.Setenv(EnvUsername, "")
	t.Setenv(EnvPassword, "")

	cases := []string{
		`not json at all`,
		`["a", "b"]`,
		`{"username": "user"}`,
		`{"username": 5, "password": "x"}`,
	}
	for _, contents := range cases {
		_, err := Load(writeSecrets(t, contents))
		require.ErrorIs(t, err, ErrMalformedSecrets, "contents %s", contents)
	}
}

func TestEnvRequiresBothVariables(t *testing.T) {
	t.Setenv(EnvUsername, "user@example.com")
	t.Setenv(EnvPassword, "")

	path := writeSecrets(t, `{"username": "filed", "password": "frompass"}`)
	creds, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "filed", creds.Username)
}
