package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchsheet/internal/stats"
)

func validFile() *File {
	return &File{
		Top:             "Alice",
		Jungle:          "Bob",
		Mid:             "Carol",
		ADC:             "Dave",
		Support:         "Erin",
		WorkbookName:    "Scrims",
		SpreadsheetName: "Data",
		LeagueInstall:   "C:/Riot Games/League of Legends",
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"top": "Alice", "jungle": "Bob", "mid": "Carol", "adc": "Dave", "support": "Erin",
		"workbook name": "Scrims", "spreadsheet name": "Data",
		"league install": "D:/Games/League", "timezone": "Europe/Paris",
		"stats": ["kills", "deaths", "assists", "totalMinionsKilled"]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	f, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Carol", f.Mid)
	assert.Equal(t, "Scrims", f.WorkbookName)
	assert.Equal(t, "D:/Games/League", f.LeagueInstall)

	s, err := f.Settings()
	require.NoError(t, err)
	assert.Equal(t, stats.Roster{"Alice", "Bob", "Carol", "Dave", "Erin"}, s.Roster)
	assert.Equal(t, "Europe/Paris", s.Location.String())
	assert.Equal(t, SinkSheets, s.Sink)
	assert.Equal(t, []stats.Stat{stats.Kills, stats.Deaths, stats.Assists, stats.CreepScore}, s.Layout.Display())
}

func TestLoadFile_Missing(t *testing.T) {
	f, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, &File{}, f)
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := LoadFile(path)
	assert.ErrorIs(t, err, ErrConfigInvalid)
}

func TestSaveFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	require.NoError(t, SaveFile(path, Template()))

	f, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Template(), f)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("MATCHSHEET_WORKBOOK_NAME", `"Team Sheet"`)
	t.Setenv("MATCHSHEET_SINK", "sqlite")
	t.Setenv("MATCHSHEET_STATS", "kills,deaths")

	f := validFile()
	f.ApplyEnv()

	assert.Equal(t, "Team Sheet", f.WorkbookName)
	assert.Equal(t, "sqlite", f.Sink)
	assert.Equal(t, []string{"kills", "deaths"}, f.Stats)
	assert.Equal(t, "Alice", f.Top)
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "MATCHSHEET_SPREADSHEET_NAME", EnvName("spreadsheet name"))
	assert.Equal(t, "MATCHSHEET_TOP", EnvName("top"))
}

func TestParseRoster(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    stats.Roster
		wantErr bool
	}{
		{
			name:  "plain names",
			input: "Alice Bob Carol Dave Erin",
			want:  stats.Roster{"Alice", "Bob", "Carol", "Dave", "Erin"},
		},
		{
			name:  "quoted name with space",
			input: `Alice "Pinky Panda" Carol Dave Erin`,
			want:  stats.Roster{"Alice", "Pinky Panda", "Carol", "Dave", "Erin"},
		},
		{
			name:  "extra spaces",
			input: "  Alice  Bob Carol   Dave Erin ",
			want:  stats.Roster{"Alice", "Bob", "Carol", "Dave", "Erin"},
		},
		{name: "too few", input: "Alice Bob", wantErr: true},
		{name: "too many", input: "A B C D E F", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRoster(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrConfigInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetRoster(t *testing.T) {
	f := validFile()
	require.NoError(t, f.SetRoster("T J M A S"))
	assert.Equal(t, "T", f.Top)
	assert.Equal(t, "S", f.Support)
}

func TestSettings_Invalid(t *testing.T) {
	tests := []struct {
		name string
		edit func(f *File)
	}{
		{"empty roster slot", func(f *File) { f.Mid = "" }},
		{"duplicate roster name", func(f *File) { f.Support = "Alice" }},
		{"no spreadsheet name", func(f *File) { f.SpreadsheetName = "" }},
		{"no workbook for sheets", func(f *File) { f.WorkbookName = "" }},
		{"unknown sink", func(f *File) { f.Sink = "excel" }},
		{"unknown stat", func(f *File) { f.Stats = []string{"pentaKills"} }},
		{"derived stat", func(f *File) { f.Stats = []string{"cs"} }},
		{"bad timezone", func(f *File) { f.Timezone = "Mars/Olympus" }},
		{"postgres without url", func(f *File) { f.Sink = SinkPostgres }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFile()
			tt.edit(f)
			_, err := f.Settings()
			assert.ErrorIs(t, err, ErrConfigInvalid)
		})
	}
}

func TestSettings_Defaults(t *testing.T) {
	s, err := validFile().Settings()
	require.NoError(t, err)

	assert.Equal(t, stats.DefaultLayout().RowWidth(), s.Layout.RowWidth())
	assert.Equal(t, 60, s.Layout.RowWidth())
	assert.NotEmpty(t, s.GoogleCredentials)
	assert.NotEmpty(t, s.LedgerFile)
	assert.True(t, s.LedgerEnabled())

	f := validFile()
	f.WorkbookName = ""
	f.Sink = "SQLite"
	f.LedgerFile = LedgerDisabled
	s, err = f.Settings()
	require.NoError(t, err)
	assert.Equal(t, SinkSQLite, s.Sink)
	assert.NotEmpty(t, s.SinkURL)
	assert.False(t, s.LedgerEnabled())
}

func TestLoad(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	path := "config.json"
	require.NoError(t, SaveFile(path, validFile()))

	s, err := Load(path, "V W X Y Z")
	require.NoError(t, err)
	assert.Equal(t, stats.Roster{"V", "W", "X", "Y", "Z"}, s.Roster)
	assert.Equal(t, "Data", s.SheetName)
}
