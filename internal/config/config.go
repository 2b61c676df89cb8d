// Package config builds the run's Settings from a JSON file, environment
// overrides and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-andiamo/splitter"
	json "github.com/goccy/go-json"
	"github.com/joho/godotenv"

	"matchsheet/internal/stats"
)

// ErrConfigInvalid means a required setting is missing or malformed
var ErrConfigInvalid = errors.New("invalid configuration")

const (
	appDirName = "matchsheet"
	envPrefix  = "MATCHSHEET_"
)

// Sink kinds
const (
	SinkSheets   = "sheets"
	SinkSQLite   = "sqlite"
	SinkLibSQL   = "libsql"
	SinkPostgres = "postgres"
	SinkMongo    = "mongo"
)

// LedgerDisabled turns the duplicate guard off when used as the ledger file
const LedgerDisabled = "-"

// File is the on-disk shape of the settings file. Keys with spaces follow
// the names users know from the spreadsheet setup.
type File struct {
	Top     string `json:"top"`
	Jungle  string `json:"jungle"`
	Mid     string `json:"mid"`
	ADC     string `json:"adc"`
	Support string `json:"support"`

	WorkbookName      string   `json:"workbook name"`
	WorkbookID        string   `json:"workbook id,omitempty"`
	SpreadsheetName   string   `json:"spreadsheet name"`
	LeagueInstall     string   `json:"league install"`
	ChampionFile      string   `json:"champion file,omitempty"`
	Timezone          string   `json:"timezone,omitempty"`
	Stats             []string `json:"stats,omitempty"`
	Sink              string   `json:"sink,omitempty"`
	SinkURL           string   `json:"sink url,omitempty"`
	SinkToken         string   `json:"sink token,omitempty"`
	SinkDatabase      string   `json:"sink database,omitempty"`
	GoogleCredentials string   `json:"google credentials,omitempty"`
	DiscordWebhook    string   `json:"discord webhook,omitempty"`
	LedgerFile        string   `json:"ledger file,omitempty"`
}

// Settings is the validated configuration of one run. It is built once at
// startup and only read afterwards.
type Settings struct {
	Roster stats.Roster
	Layout *stats.Layout

	WorkbookName  string
	WorkbookID    string
	SheetName     string
	LeagueInstall string
	ChampionFile  string
	Location      *time.Location

	Sink              string
	SinkURL           string
	SinkToken         string
	SinkDatabase      string
	GoogleCredentials string

	DiscordWebhook string
	LedgerFile     string
}

// DefaultPath returns matchsheet.json in the working directory if present,
// otherwise config.json in the user config directory.
func DefaultPath() string {
	if _, err := os.Stat("matchsheet.json"); err == nil {
		return "matchsheet.json"
	}
	return filepath.Join(appDir(), "config.json")
}

func appDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = "."
	}
	return filepath.Join(configDir, appDirName)
}

// LoadFile reads a settings file. A missing file yields an empty File so
// environment variables and flags can still supply everything.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config file %s: %w", ErrConfigInvalid, path, err)
	}
	return &f, nil
}

// Load builds Settings from the file at path, a .env file in the working
// directory, MATCHSHEET_* variables and the -roster flag, in that order.
func Load(path, roster string) (*Settings, error) {
	// .env is optional
	_ = godotenv.Load()

	f, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	f.ApplyEnv()
	if roster != "" {
		if err := f.SetRoster(roster); err != nil {
			return nil, err
		}
	}
	return f.Settings()
}

// SaveFile writes a settings file, creating its directory
func SaveFile(path string, f *File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Template is written by -init
func Template() *File {
	return &File{
		Top:             "TopLaner",
		Jungle:          "Jungler",
		Mid:             "MidLaner",
		ADC:             "Marksman",
		Support:         "Support",
		WorkbookName:    "Scrim Stats",
		SpreadsheetName: "Data",
		LeagueInstall:   "C:/Riot Games/League of Legends",
		Sink:            SinkSheets,
	}
}

// fields maps setting names to the File fields they fill
func (f *File) fields() map[string]*string {
	return map[string]*string{
		"top":                &f.Top,
		"jungle":             &f.Jungle,
		"mid":                &f.Mid,
		"adc":                &f.ADC,
		"support":            &f.Support,
		"workbook name":      &f.WorkbookName,
		"workbook id":        &f.WorkbookID,
		"spreadsheet name":   &f.SpreadsheetName,
		"league install":     &f.LeagueInstall,
		"champion file":      &f.ChampionFile,
		"timezone":           &f.Timezone,
		"sink":               &f.Sink,
		"sink url":           &f.SinkURL,
		"sink token":         &f.SinkToken,
		"sink database":      &f.SinkDatabase,
		"google credentials": &f.GoogleCredentials,
		"discord webhook":    &f.DiscordWebhook,
		"ledger file":        &f.LedgerFile,
	}
}

// EnvName returns the environment variable overriding a setting,
// e.g. "workbook name" -> MATCHSHEET_WORKBOOK_NAME.
func EnvName(setting string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(setting, " ", "_"))
}

// ApplyEnv overrides settings from MATCHSHEET_* environment variables
func (f *File) ApplyEnv() {
	for name, field := range f.fields() {
		if v, ok := os.LookupEnv(EnvName(name)); ok {
			*field = strings.Trim(v, "\"")
		}
	}
	if v, ok := os.LookupEnv(EnvName("stats")); ok && v != "" {
		f.Stats = strings.Split(v, ",")
	}
}

// SetRoster fills the five roster slots from a -roster flag value
func (f *File) SetRoster(value string) error {
	roster, err := ParseRoster(value)
	if err != nil {
		return err
	}
	f.Top, f.Jungle, f.Mid, f.ADC, f.Support = roster[stats.Top], roster[stats.Jungle], roster[stats.Mid], roster[stats.ADC], roster[stats.Support]
	return nil
}

// ParseRoster splits "top jungle mid adc support" into a roster.
// Names containing spaces are double quoted: `Alice "Pinky Panda" ...`.
func ParseRoster(value string) (stats.Roster, error) {
	var roster stats.Roster

	spaceSplitter, err := splitter.NewSplitter(' ', splitter.DoubleQuotes)
	if err != nil {
		return roster, err
	}
	parts, err := spaceSplitter.Split(strings.TrimSpace(value))
	if err != nil {
		return roster, fmt.Errorf("%w: roster: %w", ErrConfigInvalid, err)
	}

	var names []string
	for _, p := range parts {
		p = strings.Trim(p, `"`)
		if p != "" {
			names = append(names, p)
		}
	}
	if len(names) != int(stats.NumRoles) {
		return roster, fmt.Errorf("%w: roster needs %d names (top jungle mid adc support), got %d", ErrConfigInvalid, stats.NumRoles, len(names))
	}

	copy(roster[:], names)
	return roster, nil
}

// Settings validates the file and builds the run settings
func (f *File) Settings() (*Settings, error) {
	s := &Settings{
		Roster:            stats.Roster{f.Top, f.Jungle, f.Mid, f.ADC, f.Support},
		WorkbookName:      f.WorkbookName,
		WorkbookID:        f.WorkbookID,
		SheetName:         f.SpreadsheetName,
		LeagueInstall:     f.LeagueInstall,
		ChampionFile:      f.ChampionFile,
		Sink:              strings.ToLower(f.Sink),
		SinkURL:           f.SinkURL,
		SinkToken:         f.SinkToken,
		SinkDatabase:      f.SinkDatabase,
		GoogleCredentials: f.GoogleCredentials,
		DiscordWebhook:    f.DiscordWebhook,
		LedgerFile:        f.LedgerFile,
	}

	if err := s.Roster.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}
	if s.SheetName == "" {
		return nil, fmt.Errorf("%w: \"spreadsheet name\" is not set", ErrConfigInvalid)
	}

	tracked := stats.DefaultTracked
	if len(f.Stats) > 0 {
		var err error
		if tracked, err = stats.ParseStats(f.Stats); err != nil {
			return nil, fmt.Errorf("%w: stats: %w", ErrConfigInvalid, err)
		}
	}
	layout, err := stats.NewLayout(tracked)
	if err != nil {
		return nil, fmt.Errorf("%w: stats: %w", ErrConfigInvalid, err)
	}
	s.Layout = layout

	s.Location = time.Local
	if f.Timezone != "" {
		loc, err := time.LoadLocation(f.Timezone)
		if err != nil {
			return nil, fmt.Errorf("%w: timezone: %w", ErrConfigInvalid, err)
		}
		s.Location = loc
	}

	if s.Sink == "" {
		s.Sink = SinkSheets
	}
	switch s.Sink {
	case SinkSheets:
		if s.WorkbookName == "" && s.WorkbookID == "" {
			return nil, fmt.Errorf("%w: \"workbook name\" is not set", ErrConfigInvalid)
		}
		if s.GoogleCredentials == "" {
			s.GoogleCredentials = defaultGoogleCredentials()
		}
	case SinkSQLite:
		if s.SinkURL == "" {
			s.SinkURL = filepath.Join(appDir(), "matches.db")
		}
	case SinkLibSQL, SinkPostgres, SinkMongo:
		if s.SinkURL == "" {
			return nil, fmt.Errorf("%w: \"sink url\" is required for the %s sink", ErrConfigInvalid, s.Sink)
		}
		if s.Sink == SinkMongo && s.SinkDatabase == "" {
			s.SinkDatabase = appDirName
		}
	default:
		return nil, fmt.Errorf("%w: unknown sink %q", ErrConfigInvalid, f.Sink)
	}

	if s.LedgerFile == "" {
		s.LedgerFile = filepath.Join(appDir(), "ledger.bloom")
	}

	return s, nil
}

// LedgerEnabled reports whether the duplicate guard is on
func (s *Settings) LedgerEnabled() bool {
	return s.LedgerFile != LedgerDisabled
}

// defaultGoogleCredentials is where gspread keeps its authorized user token
func defaultGoogleCredentials() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = "."
	}
	return filepath.Join(configDir, "gspread", "authorized_user.json")
}
