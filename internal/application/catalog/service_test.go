package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/fitcoach/backend/internal/infrastructure/billing"
	"github.com/fitcoach/backend/internal/infrastructure/cache"
	"github.com/fitcoach/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) ListActivePrices(ctx context.Context) ([]billing.PriceInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.PriceInfo), args.Error(1)
}

func (m *MockGateway) FindPriceByLookupKey(ctx context.Context, lookupKey string) (*billing.PriceInfo, bool, error) {
	args := m.Called(ctx, lookupKey)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*billing.PriceInfo), args.Bool(1), args.Error(2)
}

func (m *MockGateway) CreateProductWithPrice(ctx context.Context, in billing.CreateProductPriceInput) (*billing.PriceInfo, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PriceInfo), args.Error(1)
}

type failingCache struct{}

func (failingCache) Get(context.Context, string, any) (bool, error) {
	return false, errors.New("redis down")
}
func (failingCache) Set(context.Context, string, any, time.Duration) error {
	return errors.New("redis down")
}
func (failingCache) Delete(context.Context, string) error { return errors.New("redis down") }

func samplePrices() []billing.PriceInfo {
	coaching := &billing.ProductInfo{ID: "prod_coach", Name: "Coaching", Active: true}
	plan := &billing.ProductInfo{ID: "prod_plan", Name: "Meal plan", Active: true, Images: []string{"https://img/plan.png"}}
	retired := &billing.ProductInfo{ID: "prod_old", Name: "Old", Active: false}
	return []billing.PriceInfo{
		{ID: "price_month", Active: true, Currency: "usd", UnitAmount: 4900, Interval: "month", LookupKey: "coach_month", Product: coaching},
		{ID: "price_plan", Active: true, Currency: "usd", UnitAmount: 2999, Product: plan},
		{ID: "price_year", Active: true, Currency: "usd", UnitAmount: 49000, Interval: "year", Product: coaching},
		{ID: "price_old", Active: true, Currency: "usd", UnitAmount: 100, Product: retired},
		{ID: "price_orphan", Active: true, Currency: "usd", UnitAmount: 100},
	}
}

func TestGroupPrices(t *testing.T) {
	products := GroupPrices(samplePrices())

	require.Len(t, products, 2)
	assert.Equal(t, "prod_coach", products[0].ID)
	require.Len(t, products[0].Prices, 2)
	assert.Equal(t, "price_month", products[0].Prices[0].ID)
	assert.Equal(t, "month", products[0].Prices[0].Interval)
	assert.Equal(t, "price_year", products[0].Prices[1].ID)
	assert.NotNil(t, products[0].Images)
	assert.NotNil(t, products[0].Metadata)

	assert.Equal(t, "prod_plan", products[1].ID)
	assert.Equal(t, []string{"https://img/plan.png"}, products[1].Images)
	assert.Equal(t, int64(2999), products[1].Prices[0].UnitAmount)
}

func TestGroupPrices_Empty(t *testing.T) {
	products := GroupPrices(nil)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestService_GetProducts_CachesListing(t *testing.T) {
	ctx := context.Background()
	gw := new(MockGateway)
	gw.On("ListActivePrices", mock.Anything).Return(samplePrices(), nil).Once()

	svc := NewService(gw, cache.NewInMemoryJSONCache(), time.Minute, zap.NewNop())

	first, err := svc.GetProducts(ctx)
	require.NoError(t, err)
	second, err := svc.GetProducts(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	gw.AssertNumberOfCalls(t, "ListActivePrices", 1)
}

func TestService_GetProducts_CacheFailureFallsThrough(t *testing.T) {
	gw := new(MockGateway)
	gw.On("ListActivePrices", mock.Anything).Return(samplePrices(), nil)

	svc := NewService(gw, failingCache{}, time.Minute, zap.NewNop())

	products, err := svc.GetProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestService_GetProducts_UpstreamError(t *testing.T) {
	gw := new(MockGateway)
	upstream := &shared.UpstreamError{Provider: "stripe", Message: "boom"}
	gw.On("ListActivePrices", mock.Anything).Return(nil, upstream)

	svc := NewService(gw, nil, 0, zap.NewNop())

	_, err := svc.GetProducts(context.Background())
	assert.ErrorIs(t, err, upstream)
}

func TestService_SyncProducts(t *testing.T) {
	ctx := context.Background()
	gw := new(MockGateway)
	jsonCache := cache.NewInMemoryJSONCache()
	require.NoError(t, jsonCache.Set(ctx, ProductsCacheKey, []Product{{ID: "stale"}}, time.Minute))

	gw.On("FindPriceByLookupKey", mock.Anything, "coach_month").
		Return(&billing.PriceInfo{ID: "price_month", Product: &billing.ProductInfo{ID: "prod_coach"}}, true, nil)
	gw.On("FindPriceByLookupKey", mock.Anything, "plan_once").Return(nil, false, nil)
	gw.On("CreateProductWithPrice", mock.Anything, billing.CreateProductPriceInput{
		LookupKey:  "plan_once",
		Name:       "Meal plan",
		UnitAmount: 2999,
		Currency:   "usd",
	}).Return(&billing.PriceInfo{ID: "price_new", Product: &billing.ProductInfo{ID: "prod_new"}}, nil)

	changed := 0
	svc := NewService(gw, jsonCache, time.Minute, zap.NewNop(),
		WithProducts([]config.CatalogProduct{
			{LookupKey: "coach_month", Name: "Coaching", UnitAmount: 4900, Currency: "usd", Interval: "month"},
			{LookupKey: "plan_once", Name: "Meal plan", UnitAmount: 2999, Currency: "usd"},
		}),
		OnCatalogChange(func() { changed++ }),
	)

	result, err := svc.SyncProducts(ctx)
	require.NoError(t, err)

	assert.Equal(t, []SyncedPrice{{LookupKey: "coach_month", PriceID: "price_month", ProductID: "prod_coach"}}, result.Existing)
	assert.Equal(t, []SyncedPrice{{LookupKey: "plan_once", PriceID: "price_new", ProductID: "prod_new"}}, result.Created)
	assert.Equal(t, 1, changed)

	var cached []Product
	hit, err := jsonCache.Get(ctx, ProductsCacheKey, &cached)
	require.NoError(t, err)
	assert.False(t, hit)
	gw.AssertExpectations(t)
}

func TestService_SyncProducts_NothingCreated(t *testing.T) {
	gw := new(MockGateway)
	gw.On("FindPriceByLookupKey", mock.Anything, "coach_month").
		Return(&billing.PriceInfo{ID: "price_month"}, true, nil)

	changed := 0
	svc := NewService(gw, nil, 0, zap.NewNop(),
		WithProducts([]config.CatalogProduct{{LookupKey: "coach_month", Name: "Coaching", UnitAmount: 4900}}),
		OnCatalogChange(func() { changed++ }),
	)

	result, err := svc.SyncProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Existing, 1)
	assert.Empty(t, result.Created)
	assert.Zero(t, changed)
	gw.AssertNotCalled(t, "CreateProductWithPrice", mock.Anything, mock.Anything)
}

func TestService_SyncProducts_Validation(t *testing.T) {
	tests := []struct {
		name     string
		products []config.CatalogProduct
		field    string
	}{
		{"missing lookup key", []config.CatalogProduct{{Name: "x", UnitAmount: 1}}, "catalog.products[0].lookup_key"},
		{"duplicate", []config.CatalogProduct{
			{LookupKey: "a", Name: "x", UnitAmount: 1},
			{LookupKey: "a", Name: "y", UnitAmount: 1},
		}, "catalog.products[1].lookup_key"},
		{"missing name", []config.CatalogProduct{{LookupKey: "a", UnitAmount: 1}}, "catalog.products[0].name"},
		{"zero amount", []config.CatalogProduct{{LookupKey: "a", Name: "x"}}, "catalog.products[0].unit_amount"},
		{"bad interval", []config.CatalogProduct{{LookupKey: "a", Name: "x", UnitAmount: 1, Interval: "week"}}, "catalog.products[0].interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := new(MockGateway)
			svc := NewService(gw, nil, 0, zap.NewNop(), WithProducts(tt.products))

			_, err := svc.SyncProducts(context.Background())
			require.Error(t, err)
			var ve *shared.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			gw.AssertNotCalled(t, "FindPriceByLookupKey", mock.Anything, mock.Anything)
		})
	}
}
