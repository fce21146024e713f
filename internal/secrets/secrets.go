// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file holds one secret: the filename is the key and the trimmed file
// contents are the value.
//
// Known keys: jwt-secret (session signing key), openalex-email (OpenAlex
// polite-pool contact).
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const (
	KeyJWTSecret     = "jwt-secret"
	KeyOpenAlexEmail = "openalex-email"
)

// maxSecretBytes bounds a single secret file.
const maxSecretBytes = 64 << 10

// Secrets maps key names to values.
type Secrets map[string]string

// Get returns the value for key, or "".
func (s Secrets) Get(key string) string { return s[key] }

// Or returns the value for key, or fallback when the key is absent.
func (s Secrets) Or(key, fallback string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return fallback
}

// Keys returns the loaded key names in sorted order.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Load reads all regular files in dir. A missing directory is not an error
// and yields an empty set. Dotfiles, subdirectories, empty files, and files
// over 64 KiB are skipped; unreadable files are logged and skipped.
func Load(dir string, logger *zap.Logger) (Secrets, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Secrets)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			logger.Warn("skipping secret", zap.String("key", name), zap.Error(err))
			continue
		}
		if info.Size() > maxSecretBytes {
			logger.Warn("skipping oversized secret", zap.String("key", name), zap.Int64("bytes", info.Size()))
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("skipping unreadable secret", zap.String("key", name), zap.Error(err))
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
