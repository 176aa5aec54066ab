package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	store, err := openStore(Config{DBDriver: "sqlite", DBPath: ":memory:"})
	require.NoError(t, err)
	defer store.Close()

	_, ok := store.(*sqliteStore)
	assert.True(t, ok)
	assert.NoError(t, store.Init(context.Background()))
}

func TestCleanupSessions(t *testing.T) {
	store := newTestSQLiteStore(t)
	alice := mustCreateUser(t, store, "alice", false)

	expired, err := newSession(alice.ID)
	require.NoError(t, err)
	expired.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	require.NoError(t, store.CreateSession(context.Background(), expired))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cleanupSessions(ctx, store, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		var n int
		err := store.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&n)
		return err == nil && n == 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanupSessions did not stop after cancel")
	}
}
