// internal/credstore/file_store.go
package credstore

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
	"gopkg.in/yaml.v3"
)

const (
	nonceSize = 24
	saltSize  = 16

	// scrypt cost parameters for deriving the sealing key from the secret.
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

var errOpenSealed = errors.New("credential could not be decrypted")

type fileEntry struct {
	Sealed    string    `yaml:"sealed"`
	ExpiresAt time.Time `yaml:"expires-at,omitempty"`
}

func (e fileEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

type fileDocument struct {
	// Salt feeds the scrypt key derivation; it is created with the file.
	Salt    string               `yaml:"salt,omitempty"`
	Entries map[string]fileEntry `yaml:"entries"`
}

// FileStore persists credentials in a YAML file. Values are sealed with
// NaCl secretbox under a key derived from the secret with scrypt, so the
// token is not readable from the file alone.
type FileStore struct {
	path   string
	secret []byte

	mu      sync.RWMutex
	nowFunc func() time.Time

	keyMu   sync.Mutex
	keySalt string
	key     [32]byte
}

func NewFileStore(path, secret string) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("credential file path is required")
	}
	if secret == "" {
		return nil, fmt.Errorf("credential store secret is required")
	}
	return &FileStore{
		path:    path,
		secret:  []byte(secret),
		nowFunc: time.Now,
	}, nil
}

// DefaultFilePath returns ~/.admin-console/credentials.yaml.
func DefaultFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".admin-console", "credentials.yaml")
	}
	return filepath.Join(home, ".admin-console", "credentials.yaml")
}

func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	doc, err := s.load()
	now := s.nowFunc()
	s.mu.RUnlock()
	if err != nil {
		return "", err
	}

	e, ok := doc.Entries[key]
	if !ok {
		return "", ErrNotFound
	}
	if e.expired(now) {
		var fresh *fileEntry
		doc, fresh, err = s.dropExpired(key)
		if err != nil {
			return "", err
		}
		if fresh == nil {
			return "", ErrNotFound
		}
		e = *fresh
	}

	value, err := s.open(doc.Salt, e.Sealed)
	if err != nil {
		return "", fmt.Errorf("read credential %q: %w", key, err)
	}
	return value, nil
}

// dropExpired re-reads the entry under the write lock and removes it only if
// it is still expired. A fresh entry written meanwhile is returned instead.
func (s *FileStore) dropExpired(key string) (*fileDocument, *fileEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, nil, err
	}
	e, ok := doc.Entries[key]
	if !ok {
		return doc, nil, nil
	}
	if !e.expired(s.nowFunc()) {
		return doc, &e, nil
	}
	delete(doc.Entries, key)
	if err := s.persist(doc); err != nil {
		return nil, nil, err
	}
	return doc, nil, nil
}

func (s *FileStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if doc.Salt == "" {
		salt := make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return fmt.Errorf("generate salt: %w", err)
		}
		doc.Salt = base64.StdEncoding.EncodeToString(salt)
	}
	sealed, err := s.seal(doc.Salt, value)
	if err != nil {
		return err
	}

	e := fileEntry{Sealed: sealed}
	if ttl > 0 {
		e.ExpiresAt = s.nowFunc().Add(ttl).UTC()
	}
	doc.Entries[key] = e
	return s.persist(doc)
}

func (s *FileStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc.Entries[key]; !ok {
		return nil
	}
	delete(doc.Entries, key)
	return s.persist(doc)
}

func (s *FileStore) load() (*fileDocument, error) {
	doc := &fileDocument{Entries: map[string]fileEntry{}}

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return nil, fmt.Errorf("read credential file: %w", err)
	}
	if len(b) == 0 {
		return doc, nil
	}
	if err := yaml.Unmarshal(b, doc); err != nil {
		return nil, fmt.Errorf("parse credential file: %w", err)
	}
	if doc.Entries == nil {
		doc.Entries = map[string]fileEntry{}
	}
	return doc, nil
}

func (s *FileStore) persist(doc *fileDocument) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal credential file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace credential file: %w", err)
	}
	return nil
}

// sealingKey derives the secretbox key for salt. The last derivation is cached
// because scrypt is deliberately slow.
func (s *FileStore) sealingKey(salt string) (*[32]byte, error) {
	s.keyMu.Lock()
	defer s.keyMu.Unlock()

	if salt != "" && salt == s.keySalt {
		return &s.key, nil
	}
	raw, err := base64.StdEncoding.DecodeString(salt)
	if err != nil || len(raw) == 0 {
		return nil, errOpenSealed
	}
	dk, err := scrypt.Key(s.secret, raw, scryptN, scryptR, scryptP, len(s.key))
	if err != nil {
		return nil, fmt.Errorf("derive credential key: %w", err)
	}
	copy(s.key[:], dk)
	s.keySalt = salt
	return &s.key, nil
}

func (s *FileStore) seal(salt, value string) (string, error) {
	key, err := s.sealingKey(salt)
	if err != nil {
		return "", err
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	out := secretbox.Seal(nonce[:], []byte(value), &nonce, key)
	return base64.StdEncoding.EncodeToString(out), nil
}

func (s *FileStore) open(salt, sealed string) (string, error) {
	key, err := s.sealingKey(salt)
	if err != nil {
		return "", err
	}
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil || len(raw) < nonceSize {
		return "", errOpenSealed
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, key)
	if !ok {
		return "", errOpenSealed
	}
	return string(plain), nil
}
