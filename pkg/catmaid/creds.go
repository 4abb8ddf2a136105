package catmaid

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ErrMissingServer is returned when neither the credentials nor the project
// configuration provide a server URL.
var ErrMissingServer = errors.New("no server URL configured")

// Credentials hold what is needed to talk to a CATMAID server. All fields
// are optional: the project config supplies server and project ID, and
// public servers need no token.
type Credentials struct {
	Server       string `json:"server"`
	ProjectID    int    `json:"project_id"`
	APIToken     string `json:"api_token"`
	HTTPUser     string `json:"http_user"`
	HTTPPassword string `json:"http_password"`
}

// LoadCredentials reads credentials from a JSON file.
func LoadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("read credentials %s: %w", path, err)
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("parse credentials %s: %w", path, err)
	}
	return creds, nil
}

// CredentialsFromEnv reads credentials from the environment, loading a
// .env file from the working directory first if one exists. Recognized
// variables: CATMAID_SERVER, CATMAID_PROJECT_ID, CATMAID_API_TOKEN,
// CATMAID_HTTP_USER, CATMAID_HTTP_PASSWORD.
func CredentialsFromEnv() Credentials {
	// Missing .env is fine - plain environment variables still apply.
	_ = godotenv.Load()

	creds := Credentials{
		Server:       os.Getenv("CATMAID_SERVER"),
		APIToken:     os.Getenv("CATMAID_API_TOKEN"),
		HTTPUser:     os.Getenv("CATMAID_HTTP_USER"),
		HTTPPassword: os.Getenv("CATMAID_HTTP_PASSWORD"),
	}
	if pid, err := strconv.Atoi(os.Getenv("CATMAID_PROJECT_ID")); err == nil {
		creds.ProjectID = pid
	}
	return creds
}

// Merge overlays non-zero fields of other onto a copy of c. Used to let an
// explicit credentials file override environment values, and the project
// config override both for server and project ID.
func (c Credentials) Merge(other Credentials) Credentials {
	out := c
	if other.Server != "" {
		out.Server = other.Server
	}
	if other.ProjectID != 0 {
		out.ProjectID = other.ProjectID
	}
	if other.APIToken != "" {
		out.APIToken = other.APIToken
	}
	if other.HTTPUser != "" {
		out.HTTPUser = other.HTTPUser
	}
	if other.HTTPPassword != "" {
		out.HTTPPassword = other.HTTPPassword
	}
	return out
}
