package client_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SegFaultAndEC/password-manager/internal/client"
	"github.com/SegFaultAndEC/password-manager/internal/journal"
	"github.com/SegFaultAndEC/password-manager/internal/services/passgen"
	"github.com/SegFaultAndEC/password-manager/test/testutil"
)

func TestClientLifecycle(t *testing.T) {
	cfg := testutil.TestConfigWithDir(t.TempDir())
	cfg.Journal.Driver = "json"

	c, err := client.New(cfg, testutil.NewTestLogger())
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, cfg, c.Config())
	assert.Equal(t, filepath.Join(cfg.Storage.DataDir, cfg.Storage.VaultFile), c.Vault.Path())

	require.NoError(t, c.Vault.Initialize(testutil.Passphrase))

	index, err := c.Open(testutil.Passphrase)
	require.NoError(t, err)
	require.NoError(t, index.AddPlatform("email", testutil.Passphrase))

	entries, err := c.History(0)
	require.NoError(t, err)
	// The save backs up the freshly created vault first
	require.Len(t, entries, 3)
	assert.Equal(t, journal.OpSave, entries[0].Operation)
	assert.Equal(t, journal.OpBackup, entries[1].Operation)
	assert.NotEmpty(t, entries[1].Detail)
	assert.Equal(t, journal.OpInit, entries[2].Operation)

	// The journal lives outside the vault directory
	_, err = os.Stat(cfg.JournalPath())
	require.NoError(t, err)
	assert.NotEqual(t, cfg.Storage.DataDir, filepath.Dir(cfg.JournalPath()))
}

func TestClientGeneratePassword(t *testing.T) {
	cfg := testutil.TestConfigWithDir(t.TempDir())
	cfg.Generator.Length = 20

	c, err := client.New(cfg, nil)
	require.NoError(t, err)
	defer c.Close()

	password, err := c.GeneratePassword(0, false)
	require.NoError(t, err)
	assert.Len(t, password, 20)

	password, err = c.GeneratePassword(8, true)
	require.NoError(t, err)
	assert.Len(t, password, 8)
	for _, r := range password {
		assert.Contains(t, passgen.Alphabet(true), string(r))
	}
}

func TestClientOpenWithoutVault(t *testing.T) {
	c, err := client.New(testutil.TestConfigWithDir(t.TempDir()), nil)
	require.NoError(t, err)
	defer c.Close()

	exists, err := c.Vault.Exists()
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = c.Open(testutil.Passphrase)
	assert.Error(t, err)
}

func TestClientRejectsJournalInsideVaultDir(t *testing.T) {
	cfg := testutil.TestConfigWithDir(t.TempDir())
	cfg.Journal.Driver = "sqlite"
	cfg.Journal.Path = filepath.Join(cfg.Storage.DataDir, "journal.db")

	_, err := client.New(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "journal path must be outside")

	// Nothing was created next to the vault
	_, err = os.Stat(cfg.Journal.Path)
	assert.True(t, os.IsNotExist(err))
}
