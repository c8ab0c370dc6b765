package database

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddConnectionParams(t *testing.T) {
	assert.Equal(t, "postgres://h/db?connect_timeout=10", addConnectionParams("postgres://h/db", "connect_timeout=10"))
	assert.Equal(t, "postgres://h/db?sslmode=disable&connect_timeout=10", addConnectionParams("postgres://h/db?sslmode=disable", "connect_timeout=10"))
	assert.Equal(t, "host=h dbname=db sslmode=require connect_timeout=10", addConnectionParams("host=h dbname=db", "sslmode=require&connect_timeout=10"))
	assert.Equal(t, "host=h", addConnectionParams("host=h", ""))
}

// Runs against a real server only when POSTGRES_TEST_DSN is set.
func TestPostgresKVClient_RoundTrip(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	ctx := context.Background()

	client, err := OpenPostgresKVClient(dsn)
	require.NoError(t, err)
	defer client.Close()

	key := "streamverse:test:" + NewSiteID()
	db := NewKVDatabase(client, key, WithSeed(nil))

	site, err := db.AddSite(ctx, fooInput())
	require.NoError(t, err)

	sites, err := db.ListSites(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, *site, sites[0])
	assert.NoError(t, db.HealthCheck(ctx))
}
