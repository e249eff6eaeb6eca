package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	appcatalog "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// orderFixture creates a user, an order for it and two products.
func orderFixture(t *testing.T, s *testServer) (userID, orderID, gear, crank uint64) {
	t.Helper()
	userID = s.create(t, "/users", sampleUser("ada@example.com"))
	orderID = s.create(t, "/orders", map[string]any{"user_id": userID, "order_date": "2024-03-01"})
	gear = s.create(t, "/products", `{"name": "Gear", "price": 2.5}`)
	crank = s.create(t, "/products", `{"name": "Crank", "price": 10}`)
	return userID, orderID, gear, crank
}

func addPath(orderID, productID uint64) string {
	return fmt.Sprintf("/orders/%d/add_product/%d", orderID, productID)
}

func removePath(orderID, productID uint64) string {
	return fmt.Sprintf("/orders/%d/remove_product/%d", orderID, productID)
}

func productsPath(orderID uint64) string {
	return fmt.Sprintf("/orders/%d/products", orderID)
}

func TestOrderHandler_Create(t *testing.T) {
	s := newTestServer(t)
	userID := s.create(t, "/users", sampleUser("ada@example.com"))

	w := s.do(t, http.MethodPost, "/orders", map[string]any{"user_id": userID, "order_date": "2024-03-01"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decodeJSON[trade.OrderResponse](t, w)
	assert.Equal(t, userID, order.UserID)
	assert.Equal(t, "2024-03-01", order.OrderDate)

	w = s.do(t, http.MethodPost, "/orders", map[string]any{"user_id": userID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order = decodeJSON[trade.OrderResponse](t, w)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), order.OrderDate)
}

func TestOrderHandler_Create_Errors(t *testing.T) {
	s := newTestServer(t)
	userID := s.create(t, "/users", sampleUser("ada@example.com"))

	tests := []struct {
		name     string
		body     any
		status   int
		messages map[string]string
	}{
		{
			name:     "missing user",
			body:     map[string]any{},
			status:   http.StatusBadRequest,
			messages: map[string]string{"user_id": "Missing data for required field."},
		},
		{
			name:     "bad date",
			body:     map[string]any{"user_id": userID, "order_date": "2024-13-01"},
			status:   http.StatusBadRequest,
			messages: map[string]string{"order_date": "Not a valid date."},
		},
		{
			name:     "user id not an integer",
			body:     `{"user_id": "one"}`,
			status:   http.StatusBadRequest,
			messages: map[string]string{"user_id": "Not a valid integer."},
		},
		{
			name:   "unknown user",
			body:   map[string]any{"user_id": 999},
			status: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/orders", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.messages, decodeError(t, w).Messages)
		})
	}
}

func TestOrderHandler_ListForUser(t *testing.T) {
	s := newTestServer(t)
	userID, orderID, _, _ := orderFixture(t, s)

	w := s.do(t, http.MethodGet, fmt.Sprintf("/orders/user/%d", userID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	orders := decodeJSON[[]trade.OrderResponse](t, w)
	require.Len(t, orders, 1)
	assert.Equal(t, orderID, orders[0].ID)

	w = s.do(t, http.MethodGet, "/orders/user/999", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestOrderHandler_AddProductTwice(t *testing.T) {
	s := newTestServer(t)
	_, orderID, gear, _ := orderFixture(t, s)

	w := s.do(t, http.MethodPut, addPath(orderID, gear), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = s.do(t, http.MethodPut, addPath(orderID, gear), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, dto.ErrNameConflict, resp.Error)
	assert.Equal(t, "Product already in order", resp.Description)

	products := decodeJSON[[]appcatalog.ProductResponse](t, s.do(t, http.MethodGet, productsPath(orderID), nil))
	assert.Len(t, products, 1)
}

func TestOrderHandler_ListProductsInInsertionOrder(t *testing.T) {
	s := newTestServer(t)
	_, orderID, gear, crank := orderFixture(t, s)

	require.Equal(t, http.StatusNoContent, s.do(t, http.MethodPut, addPath(orderID, crank), nil).Code)
	require.Equal(t, http.StatusNoContent, s.do(t, http.MethodPut, addPath(orderID, gear), nil).Code)

	w := s.do(t, http.MethodGet, productsPath(orderID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(
		`[{"id":%d,"name":"Crank","price":10.00},{"id":%d,"name":"Gear","price":2.50}]`, crank, gear),
		w.Body.String())
}

func TestOrderHandler_RemoveProduct(t *testing.T) {
	s := newTestServer(t)
	_, orderID, gear, crank := orderFixture(t, s)
	require.Equal(t, http.StatusNoContent, s.do(t, http.MethodPut, addPath(orderID, gear), nil).Code)
	require.Equal(t, http.StatusNoContent, s.do(t, http.MethodPut, addPath(orderID, crank), nil).Code)

	w := s.do(t, http.MethodDelete, removePath(orderID, gear), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	products := decodeJSON[[]appcatalog.ProductResponse](t, s.do(t, http.MethodGet, productsPath(orderID), nil))
	require.Len(t, products, 1)
	assert.Equal(t, crank, products[0].ID)

	w = s.do(t, http.MethodDelete, removePath(orderID, gear), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Product not in order", decodeError(t, w).Description)
}

func TestOrderHandler_AssociationNotFound(t *testing.T) {
	s := newTestServer(t)
	_, orderID, gear, _ := orderFixture(t, s)

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"list products of missing order", http.MethodGet, productsPath(999), http.StatusNotFound},
		{"add to missing order", http.MethodPut, addPath(999, gear), http.StatusNotFound},
		{"add missing product", http.MethodPut, addPath(orderID, 999), http.StatusNotFound},
		{"remove from missing order", http.MethodDelete, removePath(999, gear), http.StatusNotFound},
		{"remove missing product", http.MethodDelete, removePath(orderID, 999), http.StatusNotFound},
		{"invalid product id", http.MethodPut, fmt.Sprintf("/orders/%d/add_product/x", orderID), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, nil)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestOrderHandler_UpdateAndDelete(t *testing.T) {
	s := newTestServer(t)
	_, orderID, gear, _ := orderFixture(t, s)
	other := s.create(t, "/users", sampleUser("charles@example.com"))
	path := fmt.Sprintf("/orders/%d", orderID)

	w := s.do(t, http.MethodPut, path, map[string]any{"user_id": other, "order_date": "2024-04-02"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, trade.OrderResponse{ID: orderID, UserID: other, OrderDate: "2024-04-02"},
		decodeJSON[trade.OrderResponse](t, w))

	w = s.do(t, http.MethodPut, path, map[string]any{"user_id": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.Equal(t, http.StatusNoContent, s.do(t, http.MethodPut, addPath(orderID, gear), nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, nil).Code)

	// The association went with the order, so the product is free to go.
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, fmt.Sprintf("/products/%d", gear), nil).Code)

	orders := decodeJSON[[]trade.OrderResponse](t, s.do(t, http.MethodGet, "/orders", nil))
	assert.Empty(t, orders)
}

func TestHandlers_IDsBeyondKeyRange(t *testing.T) {
	s := newTestServer(t)
	_, orderID, gear, _ := orderFixture(t, s)

	const (
		maxID    = "9223372036854775807"
		overflow = "9223372036854775808"
		maxUint  = "18446744073709551615"
	)

	tests := []struct {
		name     string
		method   string
		path     string
		body     any
		status   int
		messages map[string]string
	}{
		{name: "user id", method: http.MethodGet, path: "/users/" + maxUint,
			status: http.StatusBadRequest, messages: map[string]string{"id": "Not a valid integer."}},
		{name: "product id", method: http.MethodGet, path: "/products/" + overflow,
			status: http.StatusBadRequest, messages: map[string]string{"id": "Not a valid integer."}},
		{name: "order products", method: http.MethodGet, path: "/orders/" + overflow + "/products",
			status: http.StatusBadRequest, messages: map[string]string{"orderId": "Not a valid integer."}},
		{name: "orders for user", method: http.MethodGet, path: "/orders/user/" + maxUint,
			status: http.StatusBadRequest, messages: map[string]string{"userId": "Not a valid integer."}},
		{name: "add product to order", method: http.MethodPut, path: "/orders/" + overflow + "/add_product/" + fmt.Sprint(gear),
			status: http.StatusBadRequest, messages: map[string]string{"orderId": "Not a valid integer."}},
		{name: "create order for user", method: http.MethodPost, path: "/orders", body: `{"user_id": ` + maxUint + `}`,
			status: http.StatusBadRequest, messages: map[string]string{"user_id": "Not a valid integer."}},
		{name: "move order to user", method: http.MethodPut, path: fmt.Sprintf("/orders/%d", orderID), body: `{"user_id": ` + overflow + `}`,
			status: http.StatusBadRequest, messages: map[string]string{"user_id": "Not a valid integer."}},
		{name: "largest key is looked up", method: http.MethodGet, path: "/users/" + maxID,
			status: http.StatusNotFound},
		{name: "largest key as owner", method: http.MethodPost, path: "/orders", body: `{"user_id": ` + maxID + `}`,
			status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.messages, decodeError(t, w).Messages)
		})
	}
}
