package lcu

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrLockfileNotFound = errors.New("lockfile not found")

	// ErrSourceUnavailable means the League Client could not be reached.
	ErrSourceUnavailable = errors.New("league client is not running")
	// ErrAuthenticationFailed means the client rejected the lockfile password.
	ErrAuthenticationFailed = errors.New("league client rejected credentials")
	// ErrMalformedSource means a response was missing expected structure.
	ErrMalformedSource = errors.New("malformed match data")
)

// User is the fixed basic-auth user of the LCU API
const User = "riot"

// Credentials holds the LCU connection details parsed from lockfile
type Credentials struct {
	ProcessName string
	PID         string
	Port        string
	Password    string
	Protocol    string
}

// Client talks to the League Client HTTP API
type Client struct {
	httpClient *http.Client
	baseURL    string
	authHeader string
}

// LockfilePath resolves where the lockfile should be.
// LOL_LOCKFILE_PATH wins, then the configured install directory, then well-known locations.
func LockfilePath(installDir string) (string, error) {
	if path := os.Getenv("LOL_LOCKFILE_PATH"); path != "" {
		return path, nil
	}
	if installDir != "" {
		path := filepath.Join(installDir, "lockfile")
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s", ErrLockfileNotFound, path)
		}
		return path, nil
	}
	return FindLockfile()
}

// FindLockfile searches the common install locations for the lockfile
func FindLockfile() (string, error) {
	possiblePaths := []string{
		"C:/Riot Games/League of Legends/lockfile",
		"D:/Riot Games/League of Legends/lockfile",
		"C:/Program Files/Riot Games/League of Legends/lockfile",
		"C:/Program Files (x86)/Riot Games/League of Legends/lockfile",
		"/Applications/League of Legends.app/Contents/LoL/lockfile",
	}
	for _, drive := range []string{"E:", "F:", "G:"} {
		possiblePaths = append(possiblePaths, filepath.Join(drive, "Riot Games/League of Legends/lockfile"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", ErrLockfileNotFound
}

// ParseLockfile reads and parses the lockfile content
func ParseLockfile(path string) (*Credentials, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w: %s", ErrSourceUnavailable, ErrLockfileNotFound, path)
		}
		return nil, fmt.Errorf("%w: failed to read lockfile: %w", ErrSourceUnavailable, err)
	}
	return parseLockfile(string(content))
}

// Lockfile format: LeagueClient:pid:port:password:protocol
// The client may still be writing it while starting up, so a bad format
// counts as the client not being available yet.
func parseLockfile(content string) (*Credentials, error) {
	parts := strings.Split(strings.TrimSpace(content), ":")
	if len(parts) != 5 {
		return nil, fmt.Errorf("%w: invalid lockfile format: expected 5 parts, got %d", ErrSourceUnavailable, len(parts))
	}
	if parts[2] == "" || parts[3] == "" {
		return nil, fmt.Errorf("%w: invalid lockfile format: empty port or password", ErrSourceUnavailable)
	}

	return &Credentials{
		ProcessName: parts[0],
		PID:         parts[1],
		Port:        parts[2],
		Password:    parts[3],
		Protocol:    parts[4],
	}, nil
}

// NewClient creates a client for the loopback LCU endpoint described by creds
func NewClient(creds *Credentials) *Client {
	return newClient(fmt.Sprintf("https://127.0.0.1:%s", creds.Port), creds.Password)
}

func newClient(baseURL, password string) *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true, // LCU uses self-signed cert
				},
			},
			Timeout: 10 * time.Second,
		},
		baseURL:    baseURL,
		authHeader: "Basic " + basicAuth(User, password),
	}
}

// BaseURL returns the endpoint the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request and returns the body of a 200 response
func (c *Client) Get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrSourceUnavailable, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: GET %s returned %d", ErrAuthenticationFailed, endpoint, resp.StatusCode)
	default:
		return nil, fmt.Errorf("%w: GET %s returned %d: %s", ErrSourceUnavailable, endpoint, resp.StatusCode, excerpt(body))
	}
}

func basicAuth(user, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
}

func excerpt(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
