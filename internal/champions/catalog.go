// Package champions maps numeric champion ids to display names using the
// Data Dragon champion.json reference dataset.
package champions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

// ErrUnknownChampionID means the catalog has no entry for an id.
// The catalog is expected to match the game version being played.
var ErrUnknownChampionID = errors.New("unknown champion id")

const ddragonBaseURL = "https://ddragon.leagueoflegends.com"

// ChampionData is one entry of champion.json's data map
type ChampionData struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

type championFile struct {
	Version string                  `json:"version"`
	Data    map[string]ChampionData `json:"data"`
}

// Catalog holds the champion key to name mapping. It is read-only once built.
type Catalog struct {
	names   map[string]string // key -> display name
	version string
}

// LoadFile reads a champion.json from disk
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read champion file: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from champion.json content
func Parse(data []byte) (*Catalog, error) {
	var file championFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse champions: %w", err)
	}
	return build(file)
}

func build(file championFile) (*Catalog, error) {
	if len(file.Data) == 0 {
		return nil, fmt.Errorf("champion file has no data entries")
	}

	names := make(map[string]string, len(file.Data))
	for id, champ := range file.Data {
		if champ.Key == "" || champ.Name == "" {
			return nil, fmt.Errorf("champion %q is missing key or name", id)
		}
		names[champ.Key] = champ.Name
	}

	return &Catalog{names: names, version: file.Version}, nil
}

// Fetch downloads the latest champion.json from Data Dragon
func Fetch(ctx context.Context) (*Catalog, error) {
	return fetch(ctx, &http.Client{Timeout: 10 * time.Second}, ddragonBaseURL)
}

func fetch(ctx context.Context, client *http.Client, baseURL string) (*Catalog, error) {
	var versions []string
	if err := getJSON(ctx, client, baseURL+"/api/versions.json", &versions); err != nil {
		return nil, fmt.Errorf("failed to fetch versions: %w", err)
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("no versions available")
	}

	var file championFile
	champURL := fmt.Sprintf("%s/cdn/%s/data/en_US/champion.json", baseURL, versions[0])
	if err := getJSON(ctx, client, champURL, &file); err != nil {
		return nil, fmt.Errorf("failed to fetch champions: %w", err)
	}

	return build(file)
}

func getJSON(ctx context.Context, client *http.Client, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// Name returns the display name for a numeric champion id
func (c *Catalog) Name(id int) (string, error) {
	if name, ok := c.names[strconv.Itoa(id)]; ok {
		return name, nil
	}
	return "", fmt.Errorf("%w: %d (catalog version %q)", ErrUnknownChampionID, id, c.version)
}

// Len returns the number of champions in the catalog
func (c *Catalog) Len() int {
	return len(c.names)
}

// Version returns the Data Dragon version the catalog was built from, if known
func (c *Catalog) Version() string {
	return c.version
}
