package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/julianstephens/daystreak/internal/storage"
	"github.com/julianstephens/daystreak/internal/storage/storagetest"
)

// Runs against a live server when DAYSTREAK_TEST_POSTGRES holds a
// password-free connection string (use PGPASSWORD for credentials).
func TestProviderContractIntegration(t *testing.T) {
	connStr := os.Getenv("DAYSTREAK_TEST_POSTGRES")
	if connStr == "" {
		t.Skip("DAYSTREAK_TEST_POSTGRES not set")
	}

	storagetest.Run(t, func(t *testing.T) storage.Provider {
		ctx := context.Background()
		s := New(connStr)
		require.NoError(t, s.Init(ctx))
		_, err := s.db.ExecContext(ctx, "TRUNCATE completions, habits")
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}
