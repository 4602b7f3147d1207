package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct{ now time.Time }

func (c *manualClock) Now() time.Time          { return c.now }
func (c *manualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestService_SearchCachesFreshPages(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockProvider := NewMockProvider(ctrl)
	clock := &manualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	queries := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_catalog_queries_total"}, []string{"source", "cache"})

	svc, err := NewService(mockProvider, 16, WithClock(clock.Now), WithQueryCounter(queries, "memory"))
	require.NoError(t, err)

	spec := DefaultQuerySpec()
	page := ResultPage{Books: []Book{{ID: "1"}}, Total: 1, TotalPages: 1}
	mockProvider.EXPECT().FetchCatalog(gomock.Any(), spec).Return(page, nil).Times(2)

	got, err := svc.Search(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, page, got)

	clock.Advance(ResultStaleAfter - time.Second)
	got, err = svc.Search(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, page, got)

	clock.Advance(time.Second)
	_, err = svc.Search(context.Background(), spec)
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(queries.WithLabelValues("memory", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(queries.WithLabelValues("memory", "hit")))
}

func TestService_SearchKeysBySpec(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockProvider := NewMockProvider(ctrl)
	svc, err := NewService(mockProvider, 16)
	require.NoError(t, err)

	first := DefaultQuerySpec()
	second := DefaultQuerySpec()
	second.Page = 2

	mockProvider.EXPECT().FetchCatalog(gomock.Any(), first).Return(ResultPage{Total: 24}, nil)
	mockProvider.EXPECT().FetchCatalog(gomock.Any(), second).Return(ResultPage{Total: 24}, nil)

	_, err = svc.Search(context.Background(), first)
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), second)
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), first)
	require.NoError(t, err)
}

func TestService_SearchErrorsAreNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockProvider := NewMockProvider(ctrl)
	svc, err := NewService(mockProvider, 16)
	require.NoError(t, err)

	spec := DefaultQuerySpec()
	dbErr := errors.New("db error")
	gomock.InOrder(
		mockProvider.EXPECT().FetchCatalog(gomock.Any(), spec).Return(ResultPage{}, dbErr),
		mockProvider.EXPECT().FetchCatalog(gomock.Any(), spec).Return(ResultPage{Total: 3}, nil),
	)

	_, err = svc.Search(context.Background(), spec)
	assert.ErrorIs(t, err, dbErr)

	got, err := svc.Search(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Total)
}

func TestService_Categories(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockProvider := NewMockProvider(ctrl)
	clock := &manualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc, err := NewService(mockProvider, 16, WithClock(clock.Now))
	require.NoError(t, err)

	mockProvider.EXPECT().Categories(gomock.Any()).Return([]string{"Fantasy"}, nil).Times(2)

	for i := 0; i < 3; i++ {
		got, err := svc.Categories(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"Fantasy"}, got)
	}

	clock.Advance(CategoriesStaleAfter)
	_, err = svc.Categories(context.Background())
	require.NoError(t, err)
}

func TestService_CategoriesReturnsCopy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockProvider := NewMockProvider(ctrl)
	svc, err := NewService(mockProvider, 16)
	require.NoError(t, err)

	mockProvider.EXPECT().Categories(gomock.Any()).Return([]string{"Fantasy", "Drama"}, nil).Times(1)

	first, err := svc.Categories(context.Background())
	require.NoError(t, err)
	first[0] = "Horror"

	second, err := svc.Categories(context.Background())
	require.NoError(t, err)
	second[1] = "Poetry"

	third, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Fantasy", "Drama"}, third)
}

func TestService_GetByID(t *testing.T) {
	svc, err := NewService(NewMemoryProvider(Fixture()), 0)
	require.NoError(t, err)

	b, err := svc.GetByID(context.Background(), "15")
	require.NoError(t, err)
	assert.Equal(t, "Dune", b.Title)

	_, err = svc.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryProvider_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryProvider(Fixture()).FetchCatalog(ctx, DefaultQuerySpec())
	assert.ErrorIs(t, err, context.Canceled)
}
