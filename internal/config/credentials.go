package config

import (
	"context"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost mirrors the cost/performance tradeoff used elsewhere in the
// pack for credential hashing: slow enough to discourage brute force,
// fast enough not to stall startup.
const bcryptCost = 10

// bcryptLimit is bcrypt's own input ceiling; longer secrets are pre-hashed.
const bcryptLimit = 72

// settingStore is the narrow slice of repository.Repository credentials
// needs: the settings get/set pair, so this package stays independent of
// the repository package's full Repository interface.
type settingStore interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
}

// fingerprintKey derives the settings key a credential's fingerprint is
// cached under, namespaced away from the adapter's other settings.
func fingerprintKey(credentialKey string) string {
	return "credential_fingerprint:" + credentialKey
}

// CacheFingerprint hashes apiKey with bcrypt and caches the hash under the
// repository's setting contract, keyed by credentialKey (the
// SourceEntry.CredentialKey from sources.yaml). The key itself is read
// only from the environment at process start and is never passed through
// this function's return value or persisted in the clear; this only lets
// operators later confirm which key is configured, and lets a config
// reload detect a changed key, without ever storing the key reversibly.
func CacheFingerprint(ctx context.Context, store settingStore, credentialKey, apiKey string) error {
	if apiKey == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword(prepare(apiKey), bcryptCost)
	if err != nil {
		return fmt.Errorf("config: hash credential %s: %w", credentialKey, err)
	}
	return store.SetSetting(ctx, fingerprintKey(credentialKey), string(hash))
}

// FingerprintChanged reports whether apiKey no longer matches the cached
// fingerprint for credentialKey: true if there is no cached fingerprint at
// all (first run) or if it no longer verifies (the env var's key rotated).
func FingerprintChanged(ctx context.Context, store settingStore, credentialKey, apiKey string) (bool, error) {
	if apiKey == "" {
		return false, nil
	}
	hash, ok, err := store.GetSetting(ctx, fingerprintKey(credentialKey))
	if err != nil {
		return false, fmt.Errorf("config: read credential fingerprint %s: %w", credentialKey, err)
	}
	if !ok {
		return true, nil
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), prepare(apiKey)) != nil, nil
}

// prepare applies bcrypt's 72-byte input limit by pre-hashing longer
// secrets with SHA-256, the same accommodation every bcrypt-based
// credential check in the pack makes.
func prepare(apiKey string) []byte {
	if len(apiKey) <= bcryptLimit {
		return []byte(apiKey)
	}
	sum := sha256.Sum256([]byte(apiKey))
	return sum[:]
}
