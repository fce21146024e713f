// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Secrets
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeyJWTSecret, "  0123456789abcdef0123456789abcdef  \n")
				writeFile(t, dir, KeyOpenAlexEmail, "library@uni.example\n")
				return dir
			},
			want: Secrets{
				KeyJWTSecret:     "0123456789abcdef0123456789abcdef",
				KeyOpenAlexEmail: "library@uni.example",
			},
		},
		{
			name: "returns empty set for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: Secrets{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeyJWTSecret, "valid")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: Secrets{KeyJWTSecret: "valid"},
		},
		{
			name: "skips dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, KeyOpenAlexEmail, "a@b.example")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: Secrets{KeyOpenAlexEmail: "a@b.example"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadSkipsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "huge", strings.Repeat("x", maxSecretBytes+1))
	writeFile(t, dir, KeyJWTSecret, "ok")

	core, logs := observer.New(zap.WarnLevel)
	got, err := Load(dir, zap.New(core))
	require.NoError(t, err)

	assert.Equal(t, Secrets{KeyJWTSecret: "ok"}, got)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "skipping oversized secret", logs.All()[0].Message)
}

func TestLoadNotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	writeFile(t, filepath.Dir(file), "file", "x")

	_, err := Load(file, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading secrets directory")
}

func TestSecretsAccessors(t *testing.T) {
	s := Secrets{"b": "2", "a": "1"}
	assert.Equal(t, "1", s.Get("a"))
	assert.Equal(t, "", s.Get("missing"))
	assert.Equal(t, "2", s.Or("b", "fallback"))
	assert.Equal(t, "fallback", s.Or("missing", "fallback"))
	assert.Equal(t, []string{"a", "b"}, s.Keys())
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
