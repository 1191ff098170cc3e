package catalogsvc

import (
	"context"
	"testing"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/deliveryzone"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockZones struct {
	mock.Mock
}

func (m *mockZones) List(ctx context.Context) ([]deliveryzone.Zone, error) {
	args := m.Called(ctx)

	return args.Get(0).([]deliveryzone.Zone), args.Error(1)
}

func (m *mockZones) Get(ctx context.Context, id string) (deliveryzone.Zone, error) {
	args := m.Called(ctx, id)

	return args.Get(0).(deliveryzone.Zone), args.Error(1)
}

func (m *mockZones) Insert(ctx context.Context, z deliveryzone.Zone) (deliveryzone.Zone, error) {
	args := m.Called(ctx, z)

	return args.Get(0).(deliveryzone.Zone), args.Error(1)
}

func (m *mockZones) Update(ctx context.Context, z deliveryzone.Zone) (deliveryzone.Zone, error) {
	args := m.Called(ctx, z)

	return args.Get(0).(deliveryzone.Zone), args.Error(1)
}

func (m *mockZones) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockProducts struct {
	mock.Mock
}

func (m *mockProducts) List(ctx context.Context, onlyAvailable bool) ([]product.Product, error) {
	args := m.Called(ctx, onlyAvailable)

	return args.Get(0).([]product.Product), args.Error(1)
}

func (m *mockProducts) Get(ctx context.Context, id string) (product.Product, error) {
	args := m.Called(ctx, id)

	return args.Get(0).(product.Product), args.Error(1)
}

func (m *mockProducts) Insert(ctx context.Context, p product.Product) (product.Product, error) {
	args := m.Called(ctx, p)

	return args.Get(0).(product.Product), args.Error(1)
}

func (m *mockProducts) Update(ctx context.Context, p product.Product) (product.Product, error) {
	args := m.Called(ctx, p)

	return args.Get(0).(product.Product), args.Error(1)
}

func (m *mockProducts) SetAvailability(ctx context.Context, id string, available bool) (product.Product, error) {
	args := m.Called(ctx, id, available)

	return args.Get(0).(product.Product), args.Error(1)
}

func (m *mockProducts) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func newService() (*CatalogService, *mockZones, *mockProducts) {
	zones := &mockZones{}
	products := &mockProducts{}

	return MustNewCatalogService(WithZoneRepository(zones), WithProductRepository(products)), zones, products
}

func TestCreateZone(t *testing.T) {
	svc, zones, _ := newService()
	in := deliveryzone.Zone{Name: "Centro", Cost: decimal.RequireFromString("50")}
	zones.On("Insert", mock.Anything, in).Return(deliveryzone.Zone{ID: "z1", Name: "Centro", Cost: in.Cost}, nil)

	z, err := svc.CreateZone(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "z1", z.ID)
	zones.AssertExpectations(t)
}

func TestCreateZoneValidation(t *testing.T) {
	svc, zones, _ := newService()

	tests := []struct {
		name string
		zone deliveryzone.Zone
	}{
		{name: "blank name", zone: deliveryzone.Zone{Name: "  ", Cost: decimal.Zero}},
		{name: "negative cost", zone: deliveryzone.Zone{Name: "Norte", Cost: decimal.RequireFromString("-1")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateZone(context.Background(), tt.zone)
			assert.True(t, order.IsValidation(err))
			_, err = svc.UpdateZone(context.Background(), tt.zone)
			assert.True(t, order.IsValidation(err))
		})
	}
	zones.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	zones.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProducts(t *testing.T) {
	svc, _, products := newService()
	ctx := context.Background()
	ribeye := product.Product{ID: "p1", Name: "Ribeye", Price: decimal.RequireFromString("150.25"), Available: true}

	products.On("List", mock.Anything, true).Return([]product.Product{ribeye}, nil)
	products.On("SetAvailability", mock.Anything, "p1", false).Return(product.Product{ID: "p1", Name: "Ribeye", Price: ribeye.Price}, nil)

	list, err := svc.ListProducts(ctx, true)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	p, err := svc.SetAvailability(ctx, "p1", false)
	require.NoError(t, err)
	assert.False(t, p.Available)

	_, err = svc.CreateProduct(ctx, product.Product{Name: "Chorizo", Price: decimal.RequireFromString("-3")})
	assert.True(t, order.IsValidation(err))

	products.AssertExpectations(t)
}
