package lcu

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLockfile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    *Credentials
		wantErr bool
	}{
		{
			name:    "valid",
			content: "LeagueClient:12345:54321:s3cr3t:https",
			want: &Credentials{
				ProcessName: "LeagueClient",
				PID:         "12345",
				Port:        "54321",
				Password:    "s3cr3t",
				Protocol:    "https",
			},
		},
		{
			name:    "trailing newline",
			content: "LeagueClient:1:2999:pw:https\n",
			want:    &Credentials{ProcessName: "LeagueClient", PID: "1", Port: "2999", Password: "pw", Protocol: "https"},
		},
		{name: "too few parts", content: "LeagueClient:1:2999", wantErr: true},
		{name: "empty password", content: "LeagueClient:1:2999::https", wantErr: true},
		{name: "empty", content: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLockfile(tt.content)
			if tt.wantErr {
				// a half-written lockfile is retried by -wait
				assert.ErrorIs(t, err, ErrSourceUnavailable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLockfile_Missing(t *testing.T) {
	_, err := ParseLockfile(filepath.Join(t.TempDir(), "lockfile"))
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.ErrorIs(t, err, ErrLockfileNotFound)
}

func TestLockfilePath(t *testing.T) {
	dir := t.TempDir()
	lockfile := filepath.Join(dir, "lockfile")
	require.NoError(t, os.WriteFile(lockfile, []byte("LeagueClient:1:2999:pw:https"), 0600))

	t.Setenv("LOL_LOCKFILE_PATH", "")
	path, err := LockfilePath(dir)
	require.NoError(t, err)
	assert.Equal(t, lockfile, path)

	_, err = LockfilePath(t.TempDir())
	assert.ErrorIs(t, err, ErrLockfileNotFound)

	t.Setenv("LOL_LOCKFILE_PATH", "/somewhere/else/lockfile")
	path, err = LockfilePath(dir)
	require.NoError(t, err)
	assert.Equal(t, "/somewhere/else/lockfile", path)
}

// newTestServer serves LCU endpoints over TLS with a self-signed cert
func newTestServer(t *testing.T, password string, routes map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pw, ok := r.BasicAuth()
		if !ok || user != User || pw != password {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, ok := routes[r.URL.RequestURI()]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

const historyPath = "/lol-match-history/v1/products/lol/current-summoner/matches?begIndex=0&endIndex=0"

const gameJSON = `{
	"gameId": 4242,
	"gameCreation": 1700000000000,
	"gameDuration": 1865,
	"participantIdentities": [{"participantId": 1, "player": {"summonerName": "Alice", "gameName": "Alice", "tagLine": "EUW"}}],
	"participants": [{"participantId": 1, "teamId": 100, "championId": 1, "stats": {"kills": 5, "win": true}}],
	"teams": [{"teamId": 100, "win": "Win"}, {"teamId": 200, "win": "Fail"}]
}`

func TestClient_LatestGameAndGame(t *testing.T) {
	server := newTestServer(t, "pw", map[string]string{
		historyPath:                        `{"games": {"games": [{"gameId": 4242}]}}`,
		"/lol-match-history/v1/games/4242": gameJSON,
	})
	client := newClient(server.URL, "pw")
	ctx := context.Background()

	id, err := client.LatestGameID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4242), id)

	game, err := client.Game(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1865), *game.GameDuration)
	assert.Equal(t, []string{"Alice", "Alice#EUW"}, game.ParticipantIdentities[0].Names())

	team, err := game.Team(100)
	require.NoError(t, err)
	assert.Equal(t, WinFlag("Win"), team.Win)
	assert.Contains(t, game.Participants[0].Stats, "kills")
}

func TestClient_Errors(t *testing.T) {
	server := newTestServer(t, "pw", map[string]string{
		historyPath:                     `{"games": {"games": []}}`,
		"/lol-match-history/v1/games/1": `{"gameId": 1}`,
		"/lol-match-history/v1/games/2": `not json`,
	})
	ctx := context.Background()

	t.Run("wrong password", func(t *testing.T) {
		_, err := newClient(server.URL, "nope").LatestGameID(ctx)
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("empty history", func(t *testing.T) {
		_, err := newClient(server.URL, "pw").LatestGameID(ctx)
		assert.ErrorIs(t, err, ErrMalformedSource)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := newClient(server.URL, "pw").Game(ctx, 1)
		assert.ErrorIs(t, err, ErrMalformedSource)
		assert.Contains(t, err.Error(), "gameCreation")
	})

	t.Run("undecodable body", func(t *testing.T) {
		_, err := newClient(server.URL, "pw").Game(ctx, 2)
		assert.ErrorIs(t, err, ErrMalformedSource)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := newClient(server.URL, "pw").Game(ctx, 3)
		assert.ErrorIs(t, err, ErrSourceUnavailable)
		assert.Contains(t, err.Error(), "404")
	})
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewTLSServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newClient(url, "pw").LatestGameID(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.False(t, errors.Is(err, ErrAuthenticationFailed))
}

func TestWinFlag(t *testing.T) {
	tests := []struct {
		raw  string
		want WinFlag
	}{
		{`"Win"`, "Win"},
		{`"Fail"`, "Fail"},
		{`true`, "Win"},
		{`false`, "Fail"},
		{`null`, ""},
		{`0`, "0"},
		{`{}`, "{}"},
		{`["Win"]`, `["Win"]`},
	}
	for _, tt := range tests {
		var w WinFlag
		require.NoError(t, w.UnmarshalJSON([]byte(tt.raw)), tt.raw)
		assert.Equal(t, tt.want, w, tt.raw)
	}
}

func TestMatchSource_ParticipantFallback(t *testing.T) {
	id := int64(1)
	m := &MatchSource{
		GameID:       &id,
		Participants: []Participant{{ParticipantID: 0}, {ParticipantID: 0}},
	}

	p, idx, err := m.Participant(2)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Same(t, &m.Participants[1], p)

	_, _, err = m.Participant(7)
	assert.ErrorIs(t, err, ErrMalformedSource)
}

func TestParticipantIdentity_Names(t *testing.T) {
	identity := func(summoner, gameName, tagLine string) ParticipantIdentity {
		var p ParticipantIdentity
		p.Player.SummonerName = summoner
		p.Player.GameName = gameName
		p.Player.TagLine = tagLine
		return p
	}

	// a bare game name is ambiguous once a tag line exists
	assert.Equal(t, []string{"Alice#EUW"}, identity("", "Alice", "EUW").Names())
	assert.Equal(t, []string{"Alice"}, identity("", "Alice", "").Names())
	assert.Equal(t, []string{"Old Name", "Alice#EUW"}, identity("Old Name", "Alice", "EUW").Names())
	assert.Empty(t, identity("", "", "").Names())
}
