// Package secrets resolves the Stockwatch credential pair from the
// environment or a local secrets file.
package secrets

import (
	"fmt"
	"os"
	"strings"

	"github.com/titanous/json5"
)

const (
	EnvUsername = "STOCKWATCH_USERNAME"
	EnvPassword = "STOCKWATCH_PASSWORD"

	DefaultFile = "secrets.json"
)

var (
	ErrMissingCredentials     = fmt.Errorf("no credentials in environment and no secrets file")
	ErrMalformedSecrets       = fmt.Errorf("secrets file is not a JSON object with username and password")
	ErrPlaceholderCredentials = fmt.Errorf("credentials are empty or placeholder values")
)

var placeholders = map[string]bool{
	"":                   true,
	"your_username_here": true,
	"your_password_here": true,
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Load resolves credentials with environment variables taking
// precedence over the secrets file at `path`. Values are returned
// trimmed.
func Load(path string) (Credentials, error) {
	username := os.Getenv(EnvUsername)
	password := os.Getenv(EnvPassword)
	if username != "" && password != "" {
		return validate(Credentials{Username: username, Password: password})
	}

	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Credentials{}, fmt.Errorf(
			"%w: set %s and %s or create %s",
			ErrMissingCredentials, EnvUsername, EnvPassword, path,
		)
	}
	if err != nil {
		return Credentials{}, err
	}

	var raw any
	err = json5.Unmarshal(contents, &raw)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrMalformedSecrets, err)
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return Credentials{}, fmt.Errorf("%w: top-level value is %T", ErrMalformedSecrets, raw)
	}
	user, userOk := obj["username"].(string)
	pass, passOk := obj["password"].(string)
	if !userOk || !passOk {
		return Credentials{}, fmt.Errorf("%w: missing username or password field", ErrMalformedSecrets)
	}

	return validate(Credentials{Username: user, Password: pass})
}

func validate(c Credentials) (Credentials, error) {
	c.Username = strings.TrimSpace(c.Username)
	c.Password = strings.TrimSpace(c.Password)
	if placeholders[c.Username] || placeholders[c.Password] {
		return Credentials{}, ErrPlaceholderCredentials
	}
	return c, nil
}
