package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"retail-console/internal/core/domain"
	"retail-console/internal/pkg/secret"
)

// fileTokens is the on-disk document, sealed with secretbox
type fileTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// fileTokenStore persists the pair to a sealed file on the terminal.
// The file is the key-derivation salt followed by the sealed document; it is
// replaced atomically, so readers never see only one token.
type fileTokenStore struct {
	path string
	salt []byte
	key  secret.Key

	mu     sync.RWMutex
	tokens domain.TokenPair
}

// NewFileTokenStore opens (or prepares) the token file at path.
// An unreadable or undecryptable file is treated as empty.
func NewFileTokenStore(path string, passphrase string) (TokenStore, error) {
	s := &fileTokenStore{path: path}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create token directory: %w", err)
	}

	tokens, err := s.load(passphrase)
	if err != nil {
		log.Printf("⚠️ Warning: ignoring token file %s: %v", path, err)
	}
	s.tokens = tokens

	if s.salt == nil {
		salt, err := secret.NewSalt()
		if err != nil {
			return nil, fmt.Errorf("failed to generate salt: %w", err)
		}
		s.salt = salt
		s.key = secret.DeriveKey(passphrase, salt)
	}
	return s, nil
}

// load reads the file and, when it opens, adopts its salt and key
func (s *fileTokenStore) load(passphrase string) (domain.TokenPair, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.TokenPair{}, nil
	}
	if err != nil {
		return domain.TokenPair{}, err
	}
	if len(data) < secret.SaltSize {
		return domain.TokenPair{}, secret.ErrOpen
	}

	salt := append([]byte(nil), data[:secret.SaltSize]...)
	key := secret.DeriveKey(passphrase, salt)
	plain, err := secret.Open(key, data[secret.SaltSize:])
	if err != nil {
		return domain.TokenPair{}, err
	}
	s.salt, s.key = salt, key

	var doc fileTokens
	if err := json.Unmarshal(plain, &doc); err != nil {
		return domain.TokenPair{}, fmt.Errorf("failed to decode token file: %w", err)
	}
	return domain.TokenPair{Access: doc.AccessToken, Refresh: doc.RefreshToken}, nil
}

func (s *fileTokenStore) write(tokens domain.TokenPair) error {
	plain, err := json.Marshal(fileTokens{AccessToken: tokens.Access, RefreshToken: tokens.Refresh})
	if err != nil {
		return err
	}
	sealed, err := secret.Seal(s.key, plain)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".tokens-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(append([]byte(nil), s.salt...), sealed...)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *fileTokenStore) Save(_ context.Context, tokens domain.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(tokens); err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}
	s.tokens = tokens
	return nil
}

func (s *fileTokenStore) Access(_ context.Context) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.Access, s.tokens.Access != ""
}

func (s *fileTokenStore) Refresh(_ context.Context) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.Refresh, s.tokens.Refresh != ""
}

func (s *fileTokenStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens = domain.TokenPair{}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	return nil
}
