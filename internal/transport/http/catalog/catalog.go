// Package catalog serves delivery zone and product maintenance.
package catalog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/deliveryzone"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/product"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/converters"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/httpio"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// service is the catalog service.
type service interface {
	ListZones(ctx context.Context) ([]deliveryzone.Zone, error)
	CreateZone(ctx context.Context, z deliveryzone.Zone) (deliveryzone.Zone, error)
	UpdateZone(ctx context.Context, z deliveryzone.Zone) (deliveryzone.Zone, error)
	DeleteZone(ctx context.Context, id string) error

	ListProducts(ctx context.Context, onlyAvailable bool) ([]product.Product, error)
	CreateProduct(ctx context.Context, p product.Product) (product.Product, error)
	UpdateProduct(ctx context.Context, p product.Product) (product.Product, error)
	SetAvailability(ctx context.Context, id string, available bool) (product.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type zoneRequest struct {
	Name string          `json:"name" validate:"required"`
	Cost decimal.Decimal `json:"cost"`
}

type productRequest struct {
	Name        string          `json:"name"        validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"imageUrl"    validate:"omitempty,url"`
	Available   *bool           `json:"available"`
}

func (r productRequest) toModel(id string) product.Product {
	available := true
	if r.Available != nil {
		available = *r.Available
	}

	return product.Product{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
		Available:   available,
	}
}

type availabilityRequest struct {
	Available bool `json:"available"`
}

// ListZones handles GET /api/delivery-zones.
func ListZones(w http.ResponseWriter, r *http.Request, service service) {
	zones, err := service.ListZones(r.Context())
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	httpio.WriteJSON(w, http.StatusOK, zones)
}

// SaveZone handles POST /api/delivery-zones and PUT /api/delivery-zones/{id}.
func SaveZone(w http.ResponseWriter, r *http.Request, service service) {
	var req zoneRequest
	if err := httpio.Decode(r, &req); err != nil {
		httpio.WriteError(w, err)

		return
	}
	if err := converters.Validate(req); err != nil {
		httpio.WriteError(w, err)

		return
	}

	z := deliveryzone.Zone{ID: chi.URLParam(r, "id"), Name: req.Name, Cost: req.Cost}

	var (
		saved  deliveryzone.Zone
		err    error
		status = http.StatusOK
	)
	if z.ID == "" {
		saved, err = service.CreateZone(r.Context(), z)
		status = http.StatusCreated
	} else {
		saved, err = service.UpdateZone(r.Context(), z)
	}
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	httpio.WriteJSON(w, status, saved)
}

// DeleteZone handles DELETE /api/delivery-zones/{id}.
func DeleteZone(w http.ResponseWriter, r *http.Request, service service) {
	if err := service.DeleteZone(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpio.WriteError(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListProducts handles GET /api/products?available=true.
func ListProducts(w http.ResponseWriter, r *http.Request, service service) {
	onlyAvailable, _ := strconv.ParseBool(r.URL.Query().Get("available"))

	products, err := service.ListProducts(r.Context(), onlyAvailable)
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	httpio.WriteJSON(w, http.StatusOK, products)
}

// SaveProduct handles POST /api/products and PUT /api/products/{id}.
func SaveProduct(w http.ResponseWriter, r *http.Request, service service) {
	var req productRequest
	if err := httpio.Decode(r, &req); err != nil {
		httpio.WriteError(w, err)

		return
	}
	if err := converters.Validate(req); err != nil {
		httpio.WriteError(w, err)

		return
	}

	p := req.toModel(chi.URLParam(r, "id"))

	var (
		saved  product.Product
		err    error
		status = http.StatusOK
	)
	if p.ID == "" {
		saved, err = service.CreateProduct(r.Context(), p)
		status = http.StatusCreated
	} else {
		saved, err = service.UpdateProduct(r.Context(), p)
	}
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	httpio.WriteJSON(w, status, saved)
}

// SetAvailability handles POST /api/products/{id}/availability.
func SetAvailability(w http.ResponseWriter, r *http.Request, service service) {
	var req availabilityRequest
	if err := httpio.Decode(r, &req); err != nil {
		httpio.WriteError(w, err)

		return
	}

	p, err := service.SetAvailability(r.Context(), chi.URLParam(r, "id"), req.Available)
	if err != nil {
		httpio.WriteError(w, err)

		return
	}

	httpio.WriteJSON(w, http.StatusOK, p)
}

// DeleteProduct handles DELETE /api/products/{id}.
func DeleteProduct(w http.ResponseWriter, r *http.Request, service service) {
	if err := service.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpio.WriteError(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
