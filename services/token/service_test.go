package token

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ampquote/pkg/kv"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newService(store kv.Store) *Service {
	return &Service{
		store:  store,
		ttl:    24 * time.Hour,
		logger: zap.NewNop(),
	}
}

func TestIssueAndRedeem(t *testing.T) {
	ctx := context.Background()
	svc := newService(kv.NewMemoryStore())

	tok, err := svc.Issue(ctx, "a@example.com")
	require.NoError(t, err)
	require.Len(t, tok, 32)

	licenseID, ok := svc.Redeem(ctx, tok)
	require.True(t, ok)
	require.Equal(t, "a@example.com", licenseID)
}

func TestRedeemIsSingleUse(t *testing.T) {
	ctx := context.Background()
	svc := newService(kv.NewMemoryStore())

	tok, err := svc.Issue(ctx, "a@example.com")
	require.NoError(t, err)

	_, ok := svc.Redeem(ctx, tok)
	require.True(t, ok)

	_, ok = svc.Redeem(ctx, tok)
	require.False(t, ok)
}

func TestRedeemConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	svc := newService(kv.NewMemoryStore())

	tok, err := svc.Issue(ctx, "a@example.com")
	require.NoError(t, err)

	const callers = 16
	var won int64
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			if _, ok := svc.Redeem(ctx, tok); ok {
				atomic.AddInt64(&won, 1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, won)
}

func TestRedeemExpiredToken(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	now := time.Now()
	store.Clock = func() time.Time { return now }

	svc := newService(store)
	tok, err := svc.Issue(ctx, "a@example.com")
	require.NoError(t, err)

	now = now.Add(25 * time.Hour)
	_, ok := svc.Redeem(ctx, tok)
	require.False(t, ok)
}

func TestRedeemUnknownOrEmptyToken(t *testing.T) {
	ctx := context.Background()
	svc := newService(kv.NewMemoryStore())

	_, ok := svc.Redeem(ctx, "deadbeefdeadbeefdeadbeefdeadbeef")
	require.False(t, ok)

	_, ok = svc.Redeem(ctx, "")
	require.False(t, ok)
}

type failingStore struct {
	kv.Store
}

func (failingStore) GetDel(context.Context, string) (string, error) {
	return "", errors.New("connection refused")
}

func TestRedeemStoreFailureReadsAbsent(t *testing.T) {
	svc := newService(failingStore{})
	_, ok := svc.Redeem(context.Background(), "deadbeefdeadbeefdeadbeefdeadbeef")
	require.False(t, ok)
}

func TestIssuedTokensAreUnique(t *testing.T) {
	ctx := context.Background()
	svc := newService(kv.NewMemoryStore())

	seen := make(map[string]struct{})
	for i := 0; i < 64; i++ {
		tok, err := svc.Issue(ctx, "a@example.com")
		require.NoError(t, err)
		_, dup := seen[tok]
		require.False(t, dup)
		seen[tok] = struct{}{}
	}
}
