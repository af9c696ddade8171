package coupon

import (
	"context"
	"testing"

	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/fitcoach/backend/internal/infrastructure/billing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCoupon(ctx context.Context, in billing.CouponInput) (*billing.Coupon, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Coupon), args.Error(1)
}

func (m *MockGateway) ListCoupons(ctx context.Context, limit int) ([]billing.Coupon, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Coupon), args.Error(1)
}

func (m *MockGateway) DeleteCoupon(ctx context.Context, couponID string) error {
	return m.Called(ctx, couponID).Error(0)
}

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func TestService_Create_Percent(t *testing.T) {
	gw := new(MockGateway)
	gw.On("CreateCoupon", mock.Anything, billing.CouponInput{
		ID:               "SPRING",
		PercentOff:       25,
		Duration:         DurationRepeating,
		DurationInMonths: 3,
	}).Return(&billing.Coupon{ID: "SPRING", PercentOff: 25, Duration: DurationRepeating}, nil)

	svc := NewService(gw, "usd", zap.NewNop())
	c, err := svc.Create(context.Background(), CreateRequest{
		ID:               " SPRING ",
		PercentOff:       f64(25),
		Duration:         DurationRepeating,
		DurationInMonths: i64(3),
	})

	require.NoError(t, err)
	assert.Equal(t, "SPRING", c.ID)
	gw.AssertExpectations(t)
}

func TestService_Create_AmountUsesDefaultCurrency(t *testing.T) {
	gw := new(MockGateway)
	gw.On("CreateCoupon", mock.Anything, billing.CouponInput{
		AmountOff:      500,
		Currency:       "usd",
		Duration:       DurationOnce,
		MaxRedemptions: 10,
	}).Return(&billing.Coupon{ID: "abc"}, nil)

	svc := NewService(gw, "USD", zap.NewNop())
	_, err := svc.Create(context.Background(), CreateRequest{
		AmountOff:      i64(500),
		Duration:       DurationOnce,
		MaxRedemptions: i64(10),
	})

	require.NoError(t, err)
	gw.AssertExpectations(t)
}

func TestService_Create_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   CreateRequest
		field string
	}{
		{"both discounts", CreateRequest{PercentOff: f64(10), AmountOff: i64(100), Duration: DurationOnce}, ""},
		{"no discount", CreateRequest{Duration: DurationOnce}, ""},
		{"zero percent", CreateRequest{PercentOff: f64(0), Duration: DurationOnce}, "percentOff"},
		{"percent over 100", CreateRequest{PercentOff: f64(100.5), Duration: DurationOnce}, "percentOff"},
		{"negative amount", CreateRequest{AmountOff: i64(-1), Duration: DurationOnce}, "amountOff"},
		{"missing duration", CreateRequest{PercentOff: f64(10)}, "duration"},
		{"unknown duration", CreateRequest{PercentOff: f64(10), Duration: "weekly"}, "duration"},
		{"repeating without months", CreateRequest{PercentOff: f64(10), Duration: DurationRepeating}, "durationInMonths"},
		{"months without repeating", CreateRequest{PercentOff: f64(10), Duration: DurationForever, DurationInMonths: i64(2)}, "durationInMonths"},
		{"zero redemptions", CreateRequest{PercentOff: f64(10), Duration: DurationOnce, MaxRedemptions: i64(0)}, "maxRedemptions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := new(MockGateway)
			svc := NewService(gw, "usd", zap.NewNop())

			_, err := svc.Create(context.Background(), tt.req)

			var ve *shared.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			gw.AssertNotCalled(t, "CreateCoupon", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Create_AmountWithoutCurrency(t *testing.T) {
	gw := new(MockGateway)
	svc := NewService(gw, "", zap.NewNop())

	_, err := svc.Create(context.Background(), CreateRequest{AmountOff: i64(100), Duration: DurationOnce})

	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "currency", ve.Field)
}

func TestService_List(t *testing.T) {
	gw := new(MockGateway)
	gw.On("ListCoupons", mock.Anything, DefaultListLimit).Return([]billing.Coupon{{ID: "a"}}, nil)
	gw.On("ListCoupons", mock.Anything, 5).Return([]billing.Coupon{}, nil)
	svc := NewService(gw, "usd", zap.NewNop())

	coupons, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, coupons, 1)

	_, err = svc.List(context.Background(), 5)
	require.NoError(t, err)

	_, err = svc.List(context.Background(), 101)
	assert.True(t, shared.IsValidation(err))
	_, err = svc.List(context.Background(), -1)
	assert.True(t, shared.IsValidation(err))
}

func TestService_Delete(t *testing.T) {
	gw := new(MockGateway)
	gw.On("DeleteCoupon", mock.Anything, "SPRING").Return(nil)
	svc := NewService(gw, "usd", zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "SPRING"))
	assert.True(t, shared.IsValidation(svc.Delete(context.Background(), " ")))
	gw.AssertNumberOfCalls(t, "DeleteCoupon", 1)
}
