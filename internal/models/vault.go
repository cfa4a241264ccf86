package models

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// KeyHashLen is the length of a hex encoded SHA-256 master key hash.
const KeyHashLen = 64

// Accounts maps an account name to its secret.
type Accounts map[string]string

// Document is the sole persisted unit of a vault. Its JSON shape is
//
//	{"key": "<hex sha-256>", "platforms": {"<platform>": {"<account>": "<secret>"}}}
type Document struct {
	Key       string              `json:"key"`
	Platforms map[string]Accounts `json:"platforms"`
}

// NewDocument returns an empty document guarded by keyHash.
func NewDocument(keyHash string) *Document {
	return &Document{
		Key:       keyHash,
		Platforms: make(map[string]Accounts),
	}
}

// ParseDocument decodes and validates a decrypted document.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	// A platform written as null is treated as having no accounts.
	for name, accounts := range doc.Platforms {
		if accounts == nil {
			doc.Platforms[name] = make(Accounts)
		}
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return &doc, nil
}

// Marshal serializes the document to its canonical JSON form.
func (d *Document) Marshal() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(d)
}

// Validate validates the document structure.
func (d *Document) Validate() error {
	if len(d.Key) != KeyHashLen {
		return fmt.Errorf("%w: key hash must be %d hex characters", ErrInvalidDocument, KeyHashLen)
	}

	if _, err := hex.DecodeString(d.Key); err != nil {
		return fmt.Errorf("%w: key hash is not hex", ErrInvalidDocument)
	}

	if d.Platforms == nil {
		return fmt.Errorf("%w: platforms map is missing", ErrInvalidDocument)
	}

	for platform, accounts := range d.Platforms {
		if platform == "" {
			return fmt.Errorf("%w: empty platform name", ErrInvalidDocument)
		}
		if _, ok := accounts[""]; ok {
			return fmt.Errorf("%w: empty account name in platform %q", ErrInvalidDocument, platform)
		}
	}

	return nil
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	out := &Document{
		Key:       d.Key,
		Platforms: make(map[string]Accounts, len(d.Platforms)),
	}
	for platform, accounts := range d.Platforms {
		copied := make(Accounts, len(accounts))
		for name, secret := range accounts {
			copied[name] = secret
		}
		out.Platforms[platform] = copied
	}
	return out
}

// Names strips secrets, returning platform -> sorted account names.
func (d *Document) Names() map[string][]string {
	out := make(map[string][]string, len(d.Platforms))
	for platform, accounts := range d.Platforms {
		names := make([]string, 0, len(accounts))
		for name := range accounts {
			names = append(names, name)
		}
		sort.Strings(names)
		out[platform] = names
	}
	return out
}

// Secret looks up a stored secret.
func (d *Document) Secret(platform, account string) (string, bool) {
	accounts, ok := d.Platforms[platform]
	if !ok {
		return "", false
	}
	secret, ok := accounts[account]
	return secret, ok
}
