package postal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"cadastro/internal/platform/metrics"
	"cadastro/internal/postal"
	"cadastro/internal/postal/mocks"
)

var se = &postal.Address{CEP: "01001000", Street: "Praça da Sé", Neighborhood: "Sé", City: "São Paulo", State: "SP"}

type failingCache struct{}

func (failingCache) Get(context.Context, string) (postal.Entry, bool, error) {
	return postal.Entry{}, false, errors.New("redis down")
}

func (failingCache) Set(context.Context, string, postal.Entry, time.Duration) error {
	return errors.New("redis down")
}

func TestCachedLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("second lookup is served from cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		upstream := mocks.NewMockLookuper(ctrl)
		upstream.EXPECT().Lookup(gomock.Any(), "01001000").Return(se, nil).Times(1)
		m := metrics.New(prometheus.NewRegistry())
		cached := postal.NewCachedLookup(upstream, postal.NewMemoryCache(), time.Hour, postal.WithCacheMetrics(m))

		first, err := cached.Lookup(ctx, "01001-000")
		require.NoError(t, err)
		second, err := cached.Lookup(ctx, "01001000")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1.0, promtest.ToFloat64(m.PostalCache.WithLabelValues("hit")))
		assert.Equal(t, 1.0, promtest.ToFloat64(m.PostalCache.WithLabelValues("miss")))
	})

	t.Run("not found is cached", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		upstream := mocks.NewMockLookuper(ctrl)
		upstream.EXPECT().Lookup(gomock.Any(), "99999999").Return(nil, postal.ErrNotFound).Times(1)
		cached := postal.NewCachedLookup(upstream, postal.NewMemoryCache(), time.Hour)

		_, err := cached.Lookup(ctx, "99999999")
		assert.ErrorIs(t, err, postal.ErrNotFound)
		_, err = cached.Lookup(ctx, "99999999")
		assert.ErrorIs(t, err, postal.ErrNotFound)
	})

	t.Run("failures are not cached", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		upstream := mocks.NewMockLookuper(ctrl)
		outage := postal.NewError(postal.CategoryOutage, "down", nil)
		gomock.InOrder(
			upstream.EXPECT().Lookup(gomock.Any(), "01001000").Return(nil, outage),
			upstream.EXPECT().Lookup(gomock.Any(), "01001000").Return(se, nil),
		)
		cached := postal.NewCachedLookup(upstream, postal.NewMemoryCache(), time.Hour)

		_, err := cached.Lookup(ctx, "01001000")
		assert.Equal(t, postal.CategoryOutage, postal.GetCategory(err))
		addr, err := cached.Lookup(ctx, "01001000")
		require.NoError(t, err)
		assert.Equal(t, "Sé", addr.Neighborhood)
	})

	t.Run("broken cache falls through to the upstream", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		upstream := mocks.NewMockLookuper(ctrl)
		upstream.EXPECT().Lookup(gomock.Any(), "01001000").Return(se, nil)
		cached := postal.NewCachedLookup(upstream, failingCache{}, time.Hour)

		addr, err := cached.Lookup(ctx, "01001000")
		require.NoError(t, err)
		assert.Equal(t, "SP", addr.State)
	})

	t.Run("invalid cep skips cache and upstream", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		upstream := mocks.NewMockLookuper(ctrl)
		cached := postal.NewCachedLookup(upstream, failingCache{}, time.Hour)

		_, err := cached.Lookup(ctx, "123")
		assert.Equal(t, postal.CategoryInvalidInput, postal.GetCategory(err))
	})
}

func TestMemoryCache_Expires(t *testing.T) {
	ctx := context.Background()
	c := postal.NewMemoryCache()
	require.NoError(t, c.Set(ctx, "01001000", postal.Entry{Address: se}, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, ok, err := c.Get(ctx, "01001000")
	require.NoError(t, err)
	assert.False(t, ok)
}
