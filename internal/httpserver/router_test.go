package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	memorystorage "storefront/internal/cartstorage/memory"
	"storefront/internal/checkout"
	"storefront/internal/domain"
)

type stubCatalog struct {
	products map[domain.ProductID]domain.Product
	err      error
}

func (s *stubCatalog) Product(_ context.Context, id domain.ProductID) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *stubCatalog) Products(_ context.Context) ([]domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

type stubOrders struct {
	created []domain.OrderSnapshot
	err     error
}

func (s *stubOrders) Create(_ context.Context, order domain.OrderSnapshot) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, order)
	return nil
}

func (s *stubOrders) GetByID(_ context.Context, id string) (*domain.OrderSnapshot, error) {
	for i := range s.created {
		if s.created[i].ID == id {
			return &s.created[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubOrders) GetLatestBySession(_ context.Context, sessionID string) (*domain.OrderSnapshot, error) {
	for i := len(s.created) - 1; i >= 0; i-- {
		if s.created[i].SessionID == sessionID {
			return &s.created[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func testDeps(catalog *stubCatalog, orders *stubOrders) Deps {
	return Deps{
		Carts:    cart.NewRegistry(memorystorage.New(), zerolog.Nop()),
		Catalog:  catalog,
		Checkout: checkout.NewService(orders, zerolog.Nop()),
		Orders:   orders,
	}
}

func newTestRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(zerolog.Nop(), nil, deps)
	if err != nil {
		t.Fatalf("buildRouter: %v", err)
	}
	return router
}

func doJSON(router *gin.Engine, method, path, session string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(sessionHeader, session)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sampleCatalog() *stubCatalog {
	return &stubCatalog{products: map[domain.ProductID]domain.Product{
		"7": {ID: "7", Title: "Hat", Price: decimal.RequireFromString("19.99")},
		"9": {ID: "9", Title: "Mug", Price: decimal.RequireFromString("5.00")},
	}}
}

func TestSessionMiddleware_AssignsSession(t *testing.T) {
	router := newTestRouter(t, testDeps(sampleCatalog(), &stubOrders{}))

	rec := doJSON(router, http.MethodGet, "/cart", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if rec.Header().Get(sessionHeader) == "" {
		t.Fatal("expected a generated session id in the response header")
	}
}

func TestAddCartItem(t *testing.T) {
	router := newTestRouter(t, testDeps(sampleCatalog(), &stubOrders{}))

	rec := doJSON(router, http.MethodPost, "/cart/items", "s1", map[string]any{"productId": 7, "quantity": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp cartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ItemCount != 2 || len(resp.Items) != 1 {
		t.Fatalf("unexpected cart: %+v", resp)
	}
	if resp.Items[0].ProductID != "7" {
		t.Fatalf("product id = %q, want 7", resp.Items[0].ProductID)
	}
	if resp.TotalPrice != "39.98" {
		t.Fatalf("total = %s, want 39.98", resp.TotalPrice)
	}
}

func TestAddCartItem_DefaultQuantity(t *testing.T) {
	router := newTestRouter(t, testDeps(sampleCatalog(), &stubOrders{}))

	rec := doJSON(router, http.MethodPost, "/cart/items", "s1", map[string]any{"productId": "9"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp cartResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.ItemCount != 1 {
		t.Fatalf("item count = %d, want 1", resp.ItemCount)
	}
}

func TestAddCartItem_UnknownProduct(t *testing.T) {
	router := newTestRouter(t, testDeps(sampleCatalog(), &stubOrders{}))

	rec := doJSON(router, http.MethodPost, "/cart/items", "s1", map[string]any{"productId": 404})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestAddCartItem_InvalidQuantity(t *testing.T) {
	router := newTestRouter(t, testDeps(sampleCatalog(), &stubOrders{}))

	rec := doJSON(router, http.MethodPost, "/cart/items", "s1", map[string]any{"productId": 7, "quantity": 0})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestCartIsolationBetweenSessions(t *testing.T) {
	router := newTestRouter(t, testDeps(sampleCatalog(), &stubOrders{}))

	doJSON(router, http.MethodPost, "/cart/items", "s1", map[string]any{"productId": 7})

	rec := doJSON(router, http.MethodGet, "/cart", "s2", nil)
	var resp cartResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.ItemCount != 0 {
		t.Fatalf("expected empty cart for other session, got %+v", resp)
	}
}

func TestUpdateCartItem(t *testing.T) {
	router := newTestRouter(t, testDeps(sampleCatalog(), &stubOrders{}))

	doJSON(router, http.MethodPost, "/cart/items", "s1", map[string]any{"productId": 7, "quantity": 2})
	rec := doJSON(router, http.MethodPatch, "/cart/items/7", "s1", map[string]any{"quantity": 5})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp cartResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.ItemCount != 5 {
		t.Fatalf("item count = %d, want 5", resp.ItemCount)
	}

	// Zero removes the line entirely.
	rec = doJSON(router, http.MethodPatch, "/cart/items/7", "s1", map[string]any{"quantity": 0})
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", resp)
	}
}

func TestRemoveCartItem_CoercedID(t *testing.T) {
	router := newTestRouter(t, testDeps(sampleCatalog(), &stubOrders{}))

	doJSON(router, http.MethodPost, "/cart/items", "s1", map[string]any{"productId": 7})
	rec := doJSON(router, http.MethodDelete, "/cart/items/007", "s1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp cartResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Items) != 0 {
		t.Fatalf("expected item removed, got %+v", resp)
	}
}

func TestClearCart(t *testing.T) {
	router := newTestRouter(t, testDeps(sampleCatalog(), &stubOrders{}))

	doJSON(router, http.MethodPost, "/cart/items", "s1", map[string]any{"productId": 7})
	rec := doJSON(router, http.MethodDelete, "/cart", "s1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	rec = doJSON(router, http.MethodGet, "/cart", "s1", nil)
	var resp cartResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.ItemCount != 0 {
		t.Fatalf("expected cleared cart, got %+v", resp)
	}
}

func validCheckoutBody() map[string]any {
	return map[string]any{
		"delivery": map[string]any{
			"firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com",
			"address": "1 Engine Way", "city": "London", "zipCode": "0150", "country": "Norway",
		},
		"paymentMethod": "credit-card",
	}
}

func TestCheckoutFlow(t *testing.T) {
	orders := &stubOrders{}
	router := newTestRouter(t, testDeps(sampleCatalog(), orders))

	doJSON(router, http.MethodPost, "/cart/items", "s1", map[string]any{"productId": 7, "quantity": 2})

	rec := doJSON(router, http.MethodPost, "/checkout", "s1", validCheckoutBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var placed struct {
		ID     string `json:"id"`
		Number string `json:"orderNumber"`
		Totals struct {
			Total decimal.Decimal `json:"total"`
		} `json:"totals"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &placed); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if placed.Number == "" || len(orders.created) != 1 {
		t.Fatalf("order not persisted: %s", rec.Body.String())
	}
	// 39.98 subtotal + 5.99 shipping + 3.1984 tax
	if want := decimal.RequireFromString("49.1684"); !placed.Totals.Total.Equal(want) {
		t.Fatalf("total = %s, want %s", placed.Totals.Total, want)
	}

	// The cart is emptied by a successful checkout.
	rec = doJSON(router, http.MethodGet, "/cart", "s1", nil)
	var resp cartResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.ItemCount != 0 {
		t.Fatalf("expected empty cart after checkout, got %+v", resp)
	}

	// The order is retrievable afterwards.
	rec = doJSON(router, http.MethodGet, "/orders/latest", "s1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	rec = doJSON(router, http.MethodGet, "/orders/"+placed.ID, "s1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	router := newTestRouter(t, testDeps(sampleCatalog(), &stubOrders{}))

	rec := doJSON(router, http.MethodPost, "/checkout", "s1", validCheckoutBody())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestOrder_OtherSessionHidden(t *testing.T) {
	orders := &stubOrders{}
	router := newTestRouter(t, testDeps(sampleCatalog(), orders))

	doJSON(router, http.MethodPost, "/cart/items", "s1", map[string]any{"productId": 7})
	rec := doJSON(router, http.MethodPost, "/checkout", "s1", validCheckoutBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout failed: %d", rec.Code)
	}
	orderID := orders.created[0].ID

	rec = doJSON(router, http.MethodGet, fmt.Sprintf("/orders/%s", orderID), "s2", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for foreign session, got %d", rec.Code)
	}
	rec = doJSON(router, http.MethodGet, "/orders/latest", "s2", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestListProducts_UpstreamError(t *testing.T) {
	router := newTestRouter(t, testDeps(&stubCatalog{err: errors.New("upstream down")}, &stubOrders{}))

	rec := doJSON(router, http.MethodGet, "/products", "s1", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
}

func TestGetProduct(t *testing.T) {
	router := newTestRouter(t, testDeps(sampleCatalog(), &stubOrders{}))

	rec := doJSON(router, http.MethodGet, "/products/7", "s1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	rec = doJSON(router, http.MethodGet, "/products/404", "s1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}
