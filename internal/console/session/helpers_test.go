package session_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julis-sh/console/internal/console/store"
	"github.com/julis-sh/console/internal/console/store/drivers/sqlite"
	"github.com/julis-sh/console/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var epoch = time.Unix(1700000000, 0)

func newKV(t *testing.T) store.Store {
	t.Helper()
	kv, err := sqlite.NewStore(filepath.Join(t.TempDir(), "console.db"))
	require.NoError(t, err)
	require.NoError(t, kv.ApplyMigrations())
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func newToken(t *testing.T, role string, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email: "carla@example.org",
		Role:  role,
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}
