package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_MarkAndPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "ledger.bloom")

	l, err := Open(path, "sheets/Scrims/Data")
	require.NoError(t, err)
	assert.False(t, l.Seen(4242))

	l.Mark(4242)
	assert.True(t, l.Seen(4242))
	require.NoError(t, l.Save())

	reopened, err := Open(path, "sheets/Scrims/Data")
	require.NoError(t, err)
	assert.True(t, reopened.Seen(4242))
	assert.False(t, reopened.Seen(4243))
}

func TestLedger_ScopesAreIndependent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.bloom")

	l, err := Open(path, "sheets/Scrims/Data")
	require.NoError(t, err)
	l.Mark(4242)
	require.NoError(t, l.Save())

	other, err := Open(path, "sqlite/Data")
	require.NoError(t, err)
	assert.False(t, other.Seen(4242))
}

func TestLedger_SaveWithoutChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.bloom")

	l, err := Open(path, "x")
	require.NoError(t, err)
	require.NoError(t, l.Save())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLedger_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.bloom")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0600))

	_, err := Open(path, "x")
	assert.Error(t, err)
}
