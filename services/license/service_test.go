package license

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ampquote/pkg/kv"
	"ampquote/pkg/rediskey"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newService(store kv.Store) *Service {
	return &Service{
		store:  store,
		ttl:    30 * 24 * time.Hour,
		logger: zap.NewNop(),
	}
}

func TestNormalize(t *testing.T) {
	require.Equal(t, "a@example.com", Normalize("  A@Example.COM "))
	require.Equal(t, "", Normalize("   "))
}

func TestActivateWritesRecord(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	svc := newService(store)

	require.NoError(t, svc.Activate(ctx, "A@Example.com", "evt_1"))

	raw, err := store.Get(ctx, rediskey.BuildLicenseKey("a@example.com"))
	require.NoError(t, err)

	var record Record
	require.NoError(t, json.Unmarshal([]byte(raw), &record))
	require.True(t, record.Active)
	require.Equal(t, "a@example.com", record.Identifier)
	require.Equal(t, "evt_1", record.SourceEventID)
}

func TestActivateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	svc := newService(store)

	require.NoError(t, svc.Activate(ctx, "a@example.com", "evt_1"))
	require.NoError(t, svc.Activate(ctx, "a@example.com", "evt_2"))

	raw, err := store.Get(ctx, rediskey.BuildLicenseKey("a@example.com"))
	require.NoError(t, err)

	var record Record
	require.NoError(t, json.Unmarshal([]byte(raw), &record))
	require.True(t, record.Active)
	require.Equal(t, "evt_2", record.SourceEventID)
	require.True(t, svc.IsActive(ctx, "a@example.com"))
}

func TestIsActiveAbsent(t *testing.T) {
	svc := newService(kv.NewMemoryStore())
	require.False(t, svc.IsActive(context.Background(), "nobody@example.com"))
	require.False(t, svc.IsActive(context.Background(), ""))
}

func TestIsActiveNormalizesLookup(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	svc := newService(store)

	require.NoError(t, svc.Activate(ctx, "a@example.com", "evt_1"))
	require.True(t, svc.IsActive(ctx, " A@EXAMPLE.COM "))
}

func TestIsActiveMalformedRecord(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set(ctx, rediskey.BuildLicenseKey("a@example.com"), "{not json", 0))

	svc := newService(store)
	require.False(t, svc.IsActive(ctx, "a@example.com"))
}

func TestIsActiveExpiredRecord(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	now := time.Now()
	store.Clock = func() time.Time { return now }

	svc := newService(store)
	require.NoError(t, svc.Activate(ctx, "a@example.com", "evt_1"))

	now = now.Add(31 * 24 * time.Hour)
	require.False(t, svc.IsActive(ctx, "a@example.com"))
}

type failingStore struct {
	kv.Store
}

func (failingStore) Get(context.Context, string) (string, error) {
	return "", errors.New("connection refused")
}

func TestIsActiveStoreFailureReadsInactive(t *testing.T) {
	svc := newService(failingStore{})
	require.False(t, svc.IsActive(context.Background(), "a@example.com"))
}
