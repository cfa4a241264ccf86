package client

import (
	"fmt"

	"github.com/SegFaultAndEC/password-manager/internal/config"
	"github.com/SegFaultAndEC/password-manager/internal/events"
	"github.com/SegFaultAndEC/password-manager/internal/journal"
	"github.com/SegFaultAndEC/password-manager/internal/services/passgen"
	"github.com/SegFaultAndEC/password-manager/internal/services/totp"
	"github.com/SegFaultAndEC/password-manager/internal/services/vault"
)

// Client provides the high-level API for password manager operations.
type Client struct {
	Vault     *vault.Store
	TOTP      totp.Service
	Generator *passgen.Generator
	Journal   journal.Store

	config *config.Config
	logger *events.Logger
}

// New creates a new client over the configured vault directory.
func New(cfg *config.Config, logger *events.Logger) (*Client, error) {
	if logger == nil {
		logger = events.NewNopLogger()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Create journal
	journalStore, err := journal.Open(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Create vault store
	vaultStore, err := vault.OpenStore(&cfg.Storage, logger, vault.WithJournal(journalStore))
	if err != nil {
		_ = journalStore.Close()
		return nil, err
	}

	client := &Client{
		Vault:     vaultStore,
		TOTP:      totp.NewService(),
		Generator: passgen.New(),
		Journal:   journalStore,
		config:    cfg,
		logger:    logger,
	}

	return client, nil
}

// Config returns the configuration the client was built from.
func (c *Client) Config() *config.Config {
	return c.config
}

// Open unlocks the vault and returns its index.
func (c *Client) Open(passphrase string) (*vault.Index, error) {
	return vault.Open(c.Vault, passphrase, c.logger)
}

// GeneratePassword returns a random password. A zero length uses the
// configured default.
func (c *Client) GeneratePassword(length int, symbols bool) (string, error) {
	if length == 0 {
		length = c.config.Generator.Length
	}
	return c.Generator.Generate(length, symbols)
}

// History returns the most recent journal entries, newest first.
func (c *Client) History(limit int) ([]journal.Entry, error) {
	return c.Journal.Recent(limit)
}

// Close releases the journal.
func (c *Client) Close() error {
	return c.Journal.Close()
}
