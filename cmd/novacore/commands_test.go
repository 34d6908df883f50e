package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novacore/internal/config"
	"github.com/tuannm99/novacore/internal/engine"
)

func newShellDB(t *testing.T) *engine.Database {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Storage.Workdir = t.TempDir()
	db, err := engine.NewWithOutput(cfg, &bytes.Buffer{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRunCommand_CreateImportAgg(t *testing.T) {
	db := newShellDB(t)
	data := filepath.Join(t.TempDir(), "sales.txt")
	require.NoError(t, os.WriteFile(data, []byte("1,10\n1,20\n2,30\n"), 0o644))

	var out bytes.Buffer
	require.NoError(t, runCommand(db, "create sales (region int, amount int)", &out))
	require.NoError(t, runCommand(db, "import sales "+data, &out))
	require.Contains(t, out.String(), "OK (3 rows)")

	out.Reset()
	require.NoError(t, runCommand(db, "agg sales sum_count amount region", &out))
	require.Equal(t,
		"sales.region | sales.amount | COUNT\n"+
			"-------------+--------------+------\n"+
			"1            | 30           | 2    \n"+
			"2            | 30           | 1    \n"+
			"(2 rows)\n",
		out.String())

	out.Reset()
	require.NoError(t, runCommand(db, "scan sales s", &out))
	require.Contains(t, out.String(), "s.region | s.amount")
	require.Contains(t, out.String(), "(3 rows)")

	out.Reset()
	require.NoError(t, runCommand(db, "tables", &out))
	require.Contains(t, out.String(), "sales")
}

func TestRunCommand_Errors(t *testing.T) {
	db := newShellDB(t)
	var out bytes.Buffer

	require.ErrorIs(t, runCommand(db, "scan", &out), errUsage)
	require.ErrorIs(t, runCommand(db, "agg t", &out), errUsage)
	require.Error(t, runCommand(db, "scan nope", &out))
	require.Error(t, runCommand(db, "frobnicate", &out))
	require.NoError(t, runCommand(db, "   ", &out))
}
