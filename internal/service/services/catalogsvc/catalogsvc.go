// Package catalogsvc manages the reference data orders are built from:
// delivery zones and products.
package catalogsvc

import (
	"context"
	"log/slog"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/deliveryzone"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/product"
	"go.opentelemetry.io/otel"
)

type zoneRepository interface {
	List(ctx context.Context) ([]deliveryzone.Zone, error)
	Get(ctx context.Context, id string) (deliveryzone.Zone, error)
	Insert(ctx context.Context, z deliveryzone.Zone) (deliveryzone.Zone, error)
	Update(ctx context.Context, z deliveryzone.Zone) (deliveryzone.Zone, error)
	Delete(ctx context.Context, id string) error
}

type productRepository interface {
	List(ctx context.Context, onlyAvailable bool) ([]product.Product, error)
	Get(ctx context.Context, id string) (product.Product, error)
	Insert(ctx context.Context, p product.Product) (product.Product, error)
	Update(ctx context.Context, p product.Product) (product.Product, error)
	SetAvailability(ctx context.Context, id string, available bool) (product.Product, error)
	Delete(ctx context.Context, id string) error
}

// CatalogService is a service for delivery zones and products.
type CatalogService struct {
	zones    zoneRepository
	products productRepository
}

// option is a function that configures the CatalogService.
type option func(*CatalogService)

// MustNewCatalogService creates a new CatalogService.
func MustNewCatalogService(opts ...option) *CatalogService {
	s := &CatalogService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.zones == nil || s.products == nil {
		panic("catalogsvc: zone and product repositories are required")
	}

	return s
}

// WithZoneRepository sets the delivery zone repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithZoneRepository(repo zoneRepository) option {
	return func(s *CatalogService) {
		s.zones = repo
	}
}

// WithProductRepository sets the product repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithProductRepository(repo productRepository) option {
	return func(s *CatalogService) {
		s.products = repo
	}
}

func (s *CatalogService) ListZones(ctx context.Context) ([]deliveryzone.Zone, error) {
	ctx, span := otel.Tracer("catalogsvc").Start(ctx, "CatalogService.ListZones")
	defer span.End()

	return s.zones.List(ctx)
}

func (s *CatalogService) GetZone(ctx context.Context, id string) (deliveryzone.Zone, error) {
	ctx, span := otel.Tracer("catalogsvc").Start(ctx, "CatalogService.GetZone")
	defer span.End()

	return s.zones.Get(ctx, id)
}

func (s *CatalogService) CreateZone(ctx context.Context, z deliveryzone.Zone) (deliveryzone.Zone, error) {
	ctx, span := otel.Tracer("catalogsvc").Start(ctx, "CatalogService.CreateZone")
	defer span.End()

	if err := z.Validate(); err != nil {
		return deliveryzone.Zone{}, err
	}

	created, err := s.zones.Insert(ctx, z)
	if err != nil {
		return deliveryzone.Zone{}, err
	}
	slog.Info("Delivery zone created", "zone_id", created.ID, "name", created.Name)

	return created, nil
}

func (s *CatalogService) UpdateZone(ctx context.Context, z deliveryzone.Zone) (deliveryzone.Zone, error) {
	ctx, span := otel.Tracer("catalogsvc").Start(ctx, "CatalogService.UpdateZone")
	defer span.End()

	if err := z.Validate(); err != nil {
		return deliveryzone.Zone{}, err
	}

	return s.zones.Update(ctx, z)
}

// DeleteZone removes a zone. Orders keep the cost they copied.
func (s *CatalogService) DeleteZone(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("catalogsvc").Start(ctx, "CatalogService.DeleteZone")
	defer span.End()

	return s.zones.Delete(ctx, id)
}

// ListProducts returns the catalog, optionally only what can be ordered.
func (s *CatalogService) ListProducts(ctx context.Context, onlyAvailable bool) ([]product.Product, error) {
	ctx, span := otel.Tracer("catalogsvc").Start(ctx, "CatalogService.ListProducts")
	defer span.End()

	return s.products.List(ctx, onlyAvailable)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (product.Product, error) {
	ctx, span := otel.Tracer("catalogsvc").Start(ctx, "CatalogService.GetProduct")
	defer span.End()

	return s.products.Get(ctx, id)
}

func (s *CatalogService) CreateProduct(ctx context.Context, p product.Product) (product.Product, error) {
	ctx, span := otel.Tracer("catalogsvc").Start(ctx, "CatalogService.CreateProduct")
	defer span.End()

	if err := p.Validate(); err != nil {
		return product.Product{}, err
	}

	created, err := s.products.Insert(ctx, p)
	if err != nil {
		return product.Product{}, err
	}
	slog.Info("Product created", "product_id", created.ID, "name", created.Name)

	return created, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, p product.Product) (product.Product, error) {
	ctx, span := otel.Tracer("catalogsvc").Start(ctx, "CatalogService.UpdateProduct")
	defer span.End()

	if err := p.Validate(); err != nil {
		return product.Product{}, err
	}

	return s.products.Update(ctx, p)
}

// SetAvailability toggles whether new orders may use the product.
func (s *CatalogService) SetAvailability(ctx context.Context, id string, available bool) (product.Product, error) {
	ctx, span := otel.Tracer("catalogsvc").Start(ctx, "CatalogService.SetAvailability")
	defer span.End()

	return s.products.SetAvailability(ctx, id, available)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("catalogsvc").Start(ctx, "CatalogService.DeleteProduct")
	defer span.End()

	return s.products.Delete(ctx, id)
}
