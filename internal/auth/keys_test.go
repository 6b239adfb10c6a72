package auth_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/knapsack/internal/auth"
	"github.com/ashita-ai/knapsack/internal/model"
)

func TestWriteKeyPair_LoadsIntoManager(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	privPath := filepath.Join(dir, "jwt_private.pem")
	pubPath := filepath.Join(dir, "jwt_public.pem")

	require.NoError(t, auth.WriteKeyPair(privPath, pubPath))

	info, err := os.Stat(privPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	mgr, err := auth.NewJWTManager(privPath, pubPath, time.Hour)
	require.NoError(t, err)

	token, _, err := mgr.IssueToken(model.User{ID: uuid.New(), Email: "grace@example.com"})
	require.NoError(t, err)
	_, err = mgr.ValidateToken(token)
	assert.NoError(t, err)
}

func TestWriteKeyPair_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	privPath := filepath.Join(dir, "priv.pem")
	pubPath := filepath.Join(dir, "pub.pem")
	require.NoError(t, os.WriteFile(pubPath, []byte("keep me"), 0o600))

	err := auth.WriteKeyPair(privPath, pubPath)
	require.ErrorIs(t, err, auth.ErrKeyExists)

	_, statErr := os.Stat(privPath)
	assert.True(t, os.IsNotExist(statErr), "private key must not be written when refusing")
	raw, err := os.ReadFile(pubPath)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(raw))
}
