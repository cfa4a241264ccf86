package testutil

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SegFaultAndEC/password-manager/internal/crypto"
	"github.com/SegFaultAndEC/password-manager/internal/events"
	"github.com/SegFaultAndEC/password-manager/internal/journal"
	"github.com/SegFaultAndEC/password-manager/internal/models"
	"github.com/SegFaultAndEC/password-manager/internal/services/vault"
	"github.com/SegFaultAndEC/password-manager/internal/storage"
)

// Passphrase is the master key used by fixtures.
const Passphrase = "k"

// VaultFile is the primary file name used by fixtures.
const VaultFile = "password.txt"

// NewTestLogger creates a logger for testing.
func NewTestLogger() *events.Logger {
	var buf bytes.Buffer
	return events.NewTestLogger(events.DebugLevel, "json", &buf)
}

// SampleDocument returns a small document guarded by passphrase.
func SampleDocument(passphrase string) *models.Document {
	doc := models.NewDocument(crypto.NewProvider().HashPassphrase(passphrase))
	doc.Platforms["email"] = models.Accounts{
		"me@x.com":   "s3cret",
		"work@x.com": "hunter2",
	}
	doc.Platforms["github"] = models.Accounts{
		"octocat": "ghp_example",
	}
	doc.Platforms["empty"] = models.Accounts{}
	return doc
}

// MockVault bundles a vault store over in-memory storage with its parts.
type MockVault struct {
	Store   *vault.Store
	Blobs   *storage.MockStore
	Journal *journal.MemoryStore
	Clock   *Clock
}

// NewMockVault creates an in-memory vault store. When initialize is set
// the vault is created with Passphrase.
func NewMockVault(t *testing.T, initialize bool) *MockVault {
	t.Helper()

	mv := &MockVault{
		Blobs:   storage.NewMockStore(),
		Journal: journal.NewMemoryStore(),
		Clock:   NewClock(time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)),
	}
	mv.Store = vault.NewStore(mv.Blobs, "/vault", VaultFile, NewTestLogger(),
		vault.WithJournal(mv.Journal),
		vault.WithClock(mv.Clock.Now),
	)

	if initialize {
		require.NoError(t, mv.Store.Initialize(Passphrase))
	}

	return mv
}

// NewDiskVault creates a vault store rooted in a fresh temp directory.
func NewDiskVault(t *testing.T, opts ...vault.Option) (*vault.Store, string) {
	t.Helper()

	dir := t.TempDir()
	local, err := storage.NewLocalStore(dir, NewTestLogger())
	require.NoError(t, err)

	return vault.NewStore(local, local.BaseDir(), VaultFile, NewTestLogger(), opts...), local.BaseDir()
}

// Clock is a manual clock. Each call to Now advances it by Step.
type Clock struct {
	mu   sync.Mutex
	now  time.Time
	Step time.Duration
}

// NewClock starts a clock at t that does not advance on its own.
func NewClock(t time.Time) *Clock {
	return &Clock{now: t}
}

// Now returns the current time and advances by Step.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now
	c.now = c.now.Add(c.Step)
	return now
}

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}
