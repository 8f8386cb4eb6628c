package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"painel/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "redis"})
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{DataBackend: "", DataDir: "seed"})
	require.NoError(t, err)
	assert.Equal(t, NoBackend, cfg.Type)
	assert.Equal(t, "seed", cfg.DataDirectory)
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, Config{Type: SQLiteBackend}.Validate())
	assert.Error(t, Config{Type: SheetsBackend, GoogleSpreadsheetID: "id", GoogleSheetName: "Transacoes"}.Validate())
	assert.NoError(t, Config{Type: SheetsBackend, GoogleSpreadsheetID: "id", GoogleSheetName: "Transacoes", GoogleServiceAccountJSON: "{}"}.Validate())
	assert.NoError(t, Config{Type: MemoryBackend}.Validate())
}

func TestCreateNoBackend(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: NoBackend})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.NoError(t, res.Close())
}

func TestCreateMemoryBackend(t *testing.T) {
	dir := t.TempDir()
	csv := "Date,Name,Category,Amount,Type,Status\n05/01/2026,Salário,Trabalho,5000,Receita,Succeeded\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seed_transactions.csv"), []byte(csv), 0o600))

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: dir})
	require.NoError(t, err)
	defer res.Close()

	txs, err := res.Backend.ListTransactions(context.Background(), 2026)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
	assert.NoError(t, res.Backend.Ping(context.Background()))
}

func TestCreateSQLiteBackend(t *testing.T) {
	cfg := Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "db", "painel.db")}
	res, err := NewFactory(nil).CreateBackend(context.Background(), cfg)
	require.NoError(t, err)
	defer res.Close()

	assert.Equal(t, SQLiteBackend, res.Type)
	assert.NoError(t, res.Backend.Ping(context.Background()))
	require.NotNil(t, res.Cleanup)
}

func TestCreateSheetsBackendNeedsCredentials(t *testing.T) {
	cfg := Config{
		Type:                     SheetsBackend,
		GoogleSpreadsheetID:      "id",
		GoogleSheetName:          "Transacoes",
		GoogleServiceAccountFile: filepath.Join(t.TempDir(), "missing.json"),
	}
	_, err := NewFactory(nil).CreateBackend(context.Background(), cfg)
	assert.Error(t, err)
}
