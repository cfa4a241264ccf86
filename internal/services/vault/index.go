package vault

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/SegFaultAndEC/password-manager/internal/crypto"
	"github.com/SegFaultAndEC/password-manager/internal/events"
	"github.com/SegFaultAndEC/password-manager/internal/models"
)

// DocumentStore is the persistence an Index mirrors.
type DocumentStore interface {
	Load(passphrase string) (*models.Document, error)
	Save(passphrase string, doc *models.Document) error
	ChangeKey(oldPassphrase, newPassphrase string) (*models.Document, error)
}

// Match is a fuzzy search hit. Account is empty for a platform hit.
type Match struct {
	Platform string `json:"platform"`
	Account  string `json:"account,omitempty"`
	Distance int    `json:"distance"`
}

// Index is an in-memory, name-only mirror of a vault: platform names,
// account names and the master key hash. Secrets are never cached. Every
// mutation reloads the vault, changes it, saves it and then rebuilds the
// mirror from the saved document, so a failed save leaves the mirror
// matching the disk.
type Index struct {
	store  DocumentStore
	hasher crypto.Provider
	logger *events.Logger

	mu        sync.RWMutex
	keyHash   string
	platforms []string
	accounts  map[string][]string
	collator  *collate.Collator
}

// Open loads the vault once and builds its index.
func Open(store DocumentStore, passphrase string, logger *events.Logger) (*Index, error) {
	if logger == nil {
		logger = events.NewNopLogger()
	}

	doc, err := store.Load(passphrase)
	if err != nil {
		return nil, err
	}

	x := &Index{
		store:    store,
		hasher:   crypto.NewProvider(),
		logger:   logger.WithField("component", "vault_index"),
		collator: collate.New(language.Und, collate.Numeric),
	}
	x.rebuild(doc)

	return x, nil
}

// VerifyPassphrase checks candidate against the cached key hash without
// touching the disk.
func (x *Index) VerifyPassphrase(candidate string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()

	return hashesEqual(x.hasher.HashPassphrase(candidate), x.keyHash)
}

// Platforms returns the platform names in collation order.
func (x *Index) Platforms() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()

	return append([]string(nil), x.platforms...)
}

// Accounts returns the account names of platform in collation order, or an
// empty list for an unknown platform.
func (x *Index) Accounts(platform string) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()

	return append([]string{}, x.accounts[platform]...)
}

// HasPlatform reports whether platform is cached.
func (x *Index) HasPlatform(platform string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()

	_, ok := x.accounts[platform]
	return ok
}

// HasAccount reports whether platform/account is cached.
func (x *Index) HasAccount(platform, account string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()

	return x.hasAccount(platform, account)
}

// Refresh reloads the index from disk.
func (x *Index) Refresh(passphrase string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	doc, err := x.store.Load(passphrase)
	if err != nil {
		return withContext(err, "refresh", "", "")
	}

	x.rebuild(doc)
	return nil
}

// AddPlatform creates an empty platform. Adding a known platform is a
// no-op; a platform already on disk keeps its accounts.
func (x *Index) AddPlatform(name, passphrase string) error {
	if isBlank(name) {
		return models.Errorf("add platform", models.ErrInvalidInput, "platform name must not be empty")
	}

	if x.HasPlatform(name) {
		return nil
	}

	return x.mutate("add platform", name, "", passphrase, func(doc *models.Document) (bool, error) {
		if _, ok := doc.Platforms[name]; ok {
			return false, nil
		}
		doc.Platforms[name] = models.Accounts{}
		return true, nil
	})
}

// DeletePlatform removes a platform and all of its accounts.
func (x *Index) DeletePlatform(name, passphrase string) error {
	if !x.HasPlatform(name) {
		return models.Errorf("delete platform", models.ErrNotFound, "unknown platform %q", name)
	}

	return x.mutate("delete platform", name, "", passphrase, func(doc *models.Document) (bool, error) {
		if _, ok := doc.Platforms[name]; !ok {
			return false, models.ErrNotFound
		}
		delete(doc.Platforms, name)
		return true, nil
	})
}

// AddAccount stores secret under platform/account, replacing any secret
// already there. It does nothing when the platform is unknown.
func (x *Index) AddAccount(platform, account, secret, passphrase string) error {
	if isBlank(account) {
		return models.Errorf("add account", models.ErrInvalidInput, "account name must not be empty")
	}
	if secret == "" {
		return models.Errorf("add account", models.ErrInvalidInput, "secret must not be empty")
	}

	if !x.HasPlatform(platform) {
		return nil
	}

	return x.mutate("add account", platform, account, passphrase, func(doc *models.Document) (bool, error) {
		accounts, ok := doc.Platforms[platform]
		if !ok {
			return false, nil
		}
		if current, ok := accounts[account]; ok && current == secret {
			return false, nil
		}
		accounts[account] = secret
		return true, nil
	})
}

// ChangeAccount renames an account and/or replaces its secret in a single
// save. A blank newName keeps the name; an empty newSecret keeps the secret.
func (x *Index) ChangeAccount(platform, account, newName, newSecret, passphrase string) error {
	if isBlank(newName) {
		newName = account
	}

	return x.mutate("change account", platform, account, passphrase, func(doc *models.Document) (bool, error) {
		current, ok := doc.Secret(platform, account)
		if !ok {
			return false, models.ErrNotFound
		}

		secret := newSecret
		if secret == "" {
			secret = current
		}
		if newName == account && secret == current {
			return false, nil
		}

		accounts := doc.Platforms[platform]
		delete(accounts, account)
		accounts[newName] = secret
		return true, nil
	})
}

// DeleteAccount removes platform/account. Unknown accounts are ignored.
func (x *Index) DeleteAccount(platform, account, passphrase string) error {
	if !x.HasAccount(platform, account) {
		return nil
	}

	return x.mutate("delete account", platform, account, passphrase, func(doc *models.Document) (bool, error) {
		if _, ok := doc.Secret(platform, account); !ok {
			return false, nil
		}
		delete(doc.Platforms[platform], account)
		return true, nil
	})
}

// Secret reads a secret from a fresh load of the vault.
func (x *Index) Secret(platform, account, passphrase string) (string, error) {
	doc, err := x.store.Load(passphrase)
	if err != nil {
		return "", withContext(err, "get secret", platform, account)
	}

	secret, ok := doc.Secret(platform, account)
	if !ok {
		return "", &models.VaultError{Op: "get secret", Kind: models.ErrNotFound, Platform: platform, Account: account}
	}

	x.logger.WithFields(map[string]interface{}{
		"platform": platform,
		"account":  account,
	}).Debug("Secret read")

	return secret, nil
}

// ChangeMasterKey re-encrypts the vault under newPassphrase.
func (x *Index) ChangeMasterKey(oldPassphrase, newPassphrase string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	doc, err := x.store.ChangeKey(oldPassphrase, newPassphrase)
	if err != nil {
		return withContext(err, "change master key", "", "")
	}

	x.rebuild(doc)
	return nil
}

// Find fuzzy-matches query against platform and account names, closest
// first.
func (x *Index) Find(query string) []Match {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var matches []Match
	for _, platform := range x.platforms {
		if d := fuzzy.RankMatchFold(query, platform); d >= 0 {
			matches = append(matches, Match{Platform: platform, Distance: d})
		}
		for _, account := range x.accounts[platform] {
			if d := fuzzy.RankMatchFold(query, account); d >= 0 {
				matches = append(matches, Match{Platform: platform, Account: account, Distance: d})
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	return matches
}

// Helper methods

// mutate runs fn against a fresh load and saves when fn reports a change.
// The mirror is rebuilt only from a document that matches the disk: the
// saved one, or the loaded one when nothing changed.
func (x *Index) mutate(op, platform, account, passphrase string, fn func(doc *models.Document) (bool, error)) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	doc, err := x.store.Load(passphrase)
	if err != nil {
		return withContext(err, op, platform, account)
	}

	changed, err := fn(doc)
	if err != nil {
		x.rebuild(doc)
		return withContext(err, op, platform, account)
	}
	if !changed {
		x.rebuild(doc)
		return nil
	}

	if err := x.store.Save(passphrase, doc); err != nil {
		return withContext(err, op, platform, account)
	}

	x.logger.WithFields(map[string]interface{}{
		"platform": platform,
		"account":  account,
	}).Debug(op)

	x.rebuild(doc)
	return nil
}

// rebuild replaces the mirror. Callers hold the write lock or own x.
func (x *Index) rebuild(doc *models.Document) {
	names := doc.Names()

	platforms := make([]string, 0, len(names))
	for platform, accounts := range names {
		x.collator.SortStrings(accounts)
		platforms = append(platforms, platform)
	}
	x.collator.SortStrings(platforms)

	x.keyHash = doc.Key
	x.platforms = platforms
	x.accounts = names
}

func (x *Index) hasAccount(platform, account string) bool {
	for _, name := range x.accounts[platform] {
		if name == account {
			return true
		}
	}
	return false
}

// withContext stamps op and names onto err. Bare sentinels become the kind
// of a new VaultError.
func withContext(err error, op, platform, account string) error {
	var ve *models.VaultError
	if errors.As(err, &ve) {
		return &models.VaultError{Op: op, Kind: ve.Kind, Platform: platform, Account: account, Err: ve.Err}
	}
	return &models.VaultError{Op: op, Kind: err, Platform: platform, Account: account}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
