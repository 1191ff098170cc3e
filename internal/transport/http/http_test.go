package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/deliveryzone"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/product"
	"github.com/corray333/backend-labs/meatshop/internal/service/notify"
	"github.com/corray333/backend-labs/meatshop/internal/service/services/orderstore"
	"github.com/corray333/backend-labs/meatshop/internal/service/session"
	"github.com/corray333/backend-labs/meatshop/internal/service/ticket"
	"github.com/corray333/backend-labs/meatshop/internal/transport/http/httpio"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memBackend struct {
	mu     sync.Mutex
	seq    int
	orders map[string]order.Order
}

func (b *memBackend) ListOrders(context.Context, string) ([]order.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]order.Order, 0, len(b.orders))
	for _, o := range b.orders {
		out = append(out, o.Clone())
	}

	return out, nil
}

func (b *memBackend) CreateOrder(_ context.Context, _ string, o order.Order) (order.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	o.ID = fmt.Sprintf("0000000%d-aaaa-bbbb-cccc-000000000000", b.seq)
	b.orders[o.ID] = o.Clone()

	return o, nil
}

func (b *memBackend) UpdateOrder(_ context.Context, _ string, o order.Order) (order.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.orders[o.ID]; !ok {
		return order.Order{}, order.ErrOrderNotFound
	}
	b.orders[o.ID] = o.Clone()

	return o, nil
}

func (b *memBackend) DeleteOrder(_ context.Context, _ string, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.orders, id)

	return nil
}

type stubCatalog struct {
	zones []deliveryzone.Zone
}

func (c *stubCatalog) ListZones(context.Context) ([]deliveryzone.Zone, error) {
	return c.zones, nil
}

func (c *stubCatalog) CreateZone(_ context.Context, z deliveryzone.Zone) (deliveryzone.Zone, error) {
	if err := z.Validate(); err != nil {
		return deliveryzone.Zone{}, err
	}
	z.ID = "zone-new"

	return z, nil
}

func (c *stubCatalog) UpdateZone(_ context.Context, z deliveryzone.Zone) (deliveryzone.Zone, error) {
	return z, nil
}

func (c *stubCatalog) DeleteZone(_ context.Context, id string) error {
	for _, z := range c.zones {
		if z.ID == id {
			return nil
		}
	}

	return deliveryzone.ErrZoneNotFound
}

func (c *stubCatalog) ListProducts(context.Context, bool) ([]product.Product, error) {
	return []product.Product{}, nil
}

func (c *stubCatalog) CreateProduct(_ context.Context, p product.Product) (product.Product, error) {
	return p, nil
}

func (c *stubCatalog) UpdateProduct(_ context.Context, p product.Product) (product.Product, error) {
	return p, nil
}

func (c *stubCatalog) SetAvailability(_ context.Context, id string, available bool) (product.Product, error) {
	return product.Product{ID: id, Available: available}, nil
}

func (c *stubCatalog) DeleteProduct(context.Context, string) error {
	return product.ErrProductNotFound
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	backend := &memBackend{orders: map[string]order.Order{}}
	manager := session.MustNewManager(
		session.WithStaff(map[string]string{"maria": "1234"}),
		session.WithStoreFactory(func(sess *session.Session, inbox *notify.Inbox) *orderstore.Store {
			return orderstore.NewStore(
				orderstore.WithBackend(backend),
				orderstore.WithNotifier(inbox),
				orderstore.WithSession(sess),
			)
		}),
	)
	catalog := &stubCatalog{zones: []deliveryzone.Zone{{ID: "zone-1", Name: "Centro", Cost: decimal.RequireFromString("30")}}}
	printer := ticket.NewPrinter("CARNES RH", ticket.WithClock(func() time.Time {
		return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	}))

	transport := NewHTTPTransport(manager, catalog, printer)
	transport.RegisterRoutes()

	srv := httptest.NewServer(transport.Handler())
	t.Cleanup(srv.Close)

	return srv
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path string, body any) (*http.Response, []byte) {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(c.t, err)

	return resp, buf.Bytes()
}

func (c *client) login() {
	c.t.Helper()

	resp, body := c.do(http.MethodPost, "/api/sessions", map[string]string{"staffId": "maria", "pin": "1234"})
	require.Equal(c.t, http.StatusCreated, resp.StatusCode, string(body))

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(c.t, json.Unmarshal(body, &out))
	require.NotEmpty(c.t, out.Token)
	c.token = out.Token
}

func errorKind(t *testing.T, body []byte) string {
	t.Helper()

	var e httpio.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))

	return e.Kind
}

func TestRequiresSession(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, base: srv.URL}

	resp, body := c.do(http.MethodGet, "/api/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, httpio.KindNotAuthenticated, errorKind(t, body))

	resp, _ = c.do(http.MethodPost, "/api/sessions", map[string]string{"staffId": "maria", "pin": "9999"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	c.token = "not-a-token"
	resp, _ = c.do(http.MethodGet, "/api/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOrderFlow(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, base: srv.URL}
	c.login()

	resp, body := c.do(http.MethodPost, "/api/orders", map[string]any{
		"customerName": "Ana",
		"deliveryCost": "30",
		"itemsList": []map[string]any{
			{"name": "Arrachera", "quantity": 2, "unitPrice": "150.25"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created struct {
		ID             string   `json:"id"`
		Status         string   `json:"status"`
		RealTotal      string   `json:"realTotal"`
		ProductDetails string   `json:"productDetails"`
		AllowedActions []string `json:"allowedActions"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "New", created.Status)
	assert.Equal(t, "330.5", created.RealTotal)
	assert.Equal(t, "2x Arrachera", created.ProductDetails)
	assert.ElementsMatch(t, []string{"accept", "cancel"}, created.AllowedActions)

	resp, body = c.do(http.MethodGet, "/api/orders?view=active", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 1)

	resp, body = c.do(http.MethodPost, "/api/orders/"+created.ID+"/pay", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, httpio.KindInvalidTransition, errorKind(t, body))

	resp, _ = c.do(http.MethodPost, "/api/orders/"+created.ID+"/accept", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = c.do(http.MethodPatch, "/api/orders/"+created.ID, map[string]any{"status": "Shipped", "notes": "side door"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"status":"Preparing"`, "edits never move the status")
	assert.Contains(t, string(body), `"notes":"side door"`)

	resp, body = c.do(http.MethodPost, "/api/orders/"+created.ID+"/send", map[string]any{
		"paidWith":            "500",
		"driverCarriesChange": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"changeGiven":"169.5"`)

	resp, body = c.do(http.MethodPost, "/api/orders/"+created.ID+"/send", map[string]any{"paidWith": "10"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "shipped orders cannot be resent")
	assert.Equal(t, httpio.KindInvalidTransition, errorKind(t, body))

	resp, body = c.do(http.MethodPost, "/api/orders/"+created.ID+"/pay", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"driverSettlement":"500"`)

	resp, body = c.do(http.MethodPatch, "/api/orders/"+created.ID, map[string]any{"realTotal": "1"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, httpio.KindInvalidTransition, errorKind(t, body))

	resp, body = c.do(http.MethodGet, "/api/orders/"+created.ID+"/ticket?format=simple", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"))
	assert.Contains(t, string(body), "CARNES RH")

	resp, _ = c.do(http.MethodGet, "/api/orders/"+created.ID+"/ticket?format=fancy", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = c.do(http.MethodDelete, "/api/orders/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = c.do(http.MethodGet, "/api/orders/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, httpio.KindNotFound, errorKind(t, body))
}

func TestCreateOrderValidation(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, base: srv.URL}
	c.login()

	resp, body := c.do(http.MethodPost, "/api/orders", map[string]any{"customerName": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, httpio.KindValidation, errorKind(t, body))

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/orders", strings.NewReader("{"))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+c.token)
	raw, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestLogoutEndsSession(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, base: srv.URL}
	c.login()

	resp, _ := c.do(http.MethodDelete, "/api/sessions", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = c.do(http.MethodGet, "/api/sync", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCatalogRoutes(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, base: srv.URL}
	c.login()

	resp, body := c.do(http.MethodGet, "/api/delivery-zones", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Centro")

	resp, body = c.do(http.MethodPost, "/api/delivery-zones", map[string]any{"name": "", "cost": "10"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))

	resp, _ = c.do(http.MethodDelete, "/api/delivery-zones/zone-9", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = c.do(http.MethodDelete, "/api/products/p-9", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOpenAPIDocument(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/swagger/openapi.yaml")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))
}
