package session

import (
	"context"
	"errors"

	"github.com/zalando/go-keyring"
	"go.uber.org/zap"

	"github.com/goliatone/go-pawhealth/internal/store"
)

const keychainAccount = "default"

// ErrNotFound is returned when no token is stored.
var ErrNotFound = errors.New("session: no stored token")

// TokenStore persists the bearer token between runs.
type TokenStore interface {
	Save(ctx context.Context, token string) error
	Load(ctx context.Context) (string, error)
	Delete(ctx context.Context) error
}

// KeychainStore keeps the token in the OS keychain (macOS Keychain, Windows
// Credential Manager, Secret Service on Linux).
type KeychainStore struct {
	service string
}

// NewKeychainStore stores the token under the service name appName.
func NewKeychainStore(appName string) *KeychainStore {
	return &KeychainStore{service: appName}
}

// Save implements TokenStore.
func (s *KeychainStore) Save(_ context.Context, token string) error {
	return keyring.Set(s.service, keychainAccount, token)
}

// Load implements TokenStore.
func (s *KeychainStore) Load(_ context.Context) (string, error) {
	secret, err := keyring.Get(s.service, keychainAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	return secret, err
}

// Delete implements TokenStore. Deleting a missing token is not an error.
func (s *KeychainStore) Delete(_ context.Context) error {
	err := keyring.Delete(s.service, keychainAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// KV is the key/value surface of the local state store.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// KVStore keeps the token in the local state database, for hosts without a
// keychain.
type KVStore struct {
	kv  KV
	key string
}

// NewKVStore stores the token under key.
func NewKVStore(kv KV, key string) *KVStore {
	return &KVStore{kv: kv, key: key}
}

// Save implements TokenStore.
func (s *KVStore) Save(ctx context.Context, token string) error {
	return s.kv.Set(ctx, s.key, token)
}

// Load implements TokenStore.
func (s *KVStore) Load(ctx context.Context) (string, error) {
	token, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrNotFound
	}
	return token, err
}

// Delete implements TokenStore.
func (s *KVStore) Delete(ctx context.Context) error {
	return s.kv.Delete(ctx, s.key)
}

// FallbackStore writes to the primary store and falls back to the secondary
// when the primary is unavailable.
type FallbackStore struct {
	primary   TokenStore
	secondary TokenStore
	logger    *zap.Logger
}

// NewFallbackStore combines two stores.
func NewFallbackStore(primary, secondary TokenStore, logger *zap.Logger) *FallbackStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackStore{primary: primary, secondary: secondary, logger: logger}
}

// Save implements TokenStore.
func (s *FallbackStore) Save(ctx context.Context, token string) error {
	err := s.primary.Save(ctx, token)
	if err == nil {
		return nil
	}
	s.logger.Debug("primary token store unavailable", zap.Error(err))
	return s.secondary.Save(ctx, token)
}

// Load implements TokenStore.
func (s *FallbackStore) Load(ctx context.Context) (string, error) {
	token, err := s.primary.Load(ctx)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, ErrNotFound) {
		s.logger.Debug("primary token store unavailable", zap.Error(err))
	}
	return s.secondary.Load(ctx)
}

// Delete implements TokenStore, clearing both stores.
func (s *FallbackStore) Delete(ctx context.Context) error {
	perr := s.primary.Delete(ctx)
	serr := s.secondary.Delete(ctx)
	if perr != nil && serr != nil {
		return errors.Join(perr, serr)
	}
	return nil
}
