package controllers_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/pc-cafe/models"
	"github.com/yeremiapane/pc-cafe/testutil"
)

type createdOrder struct {
	ID         uint               `json:"id"`
	Status     models.OrderStatus `json:"status"`
	SeatNumber uint               `json:"seatNumber"`
}

func placeOrder(t *testing.T, s *testutil.Server, token string, body map[string]interface{}) createdOrder {
	t.Helper()
	var out createdOrder
	w := s.Do(http.MethodPost, "/api/orders", body, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.DecodeData(t, w, &out)
	return out
}

func TestCreateOrderEndpoint(t *testing.T) {
	s := testutil.NewServer(t)
	_, adminToken := s.User("boss", models.RoleAdmin)
	_, token := s.User("u1", models.RoleUser)
	menuID := createMenu(t, s, adminToken, "Coffee", 3000)

	order := placeOrder(t, s, token, map[string]interface{}{
		"menuId": menuID, "quantity": 2, "paymentMethod": "cash", "seatNumber": 1,
	})
	assert.NotZero(t, order.ID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, uint(1), order.SeatNumber)

	cases := []struct {
		name    string
		body    map[string]interface{}
		message string
	}{
		{"missing menu", map[string]interface{}{"quantity": 1, "paymentMethod": "cash", "seatNumber": 1}, "menuId is required"},
		{"zero quantity", map[string]interface{}{"menuId": menuID, "quantity": 0, "paymentMethod": "cash", "seatNumber": 1}, "quantity must be at least 1"},
		{"bad payment", map[string]interface{}{"menuId": menuID, "quantity": 1, "paymentMethod": "crypto", "seatNumber": 1}, "paymentMethod must be card or cash"},
		{"unknown menu", map[string]interface{}{"menuId": 999, "quantity": 1, "paymentMethod": "card", "seatNumber": 1}, "menu not found"},
		{"bad seat", map[string]interface{}{"menuId": menuID, "quantity": 1, "paymentMethod": "card", "seatNumber": 500}, "invalid seat number"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := s.Do(http.MethodPost, "/api/orders", tc.body, token)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.message, testutil.Decode(t, w).Message)
		})
	}
}

func TestCreateOrderUsesBoundSeat(t *testing.T) {
	s := testutil.NewServer(t)
	_, adminToken := s.User("boss", models.RoleAdmin)
	menuID := createMenu(t, s, adminToken, "Coffee", 3000)
	token := seatUser(t, s, "u1", 7)

	order := placeOrder(t, s, token, map[string]interface{}{
		"menuId": menuID, "quantity": 1, "paymentMethod": "card", "seatNumber": 1,
	})
	assert.Equal(t, uint(7), order.SeatNumber)
}

func TestOrderVisibility(t *testing.T) {
	s := testutil.NewServer(t)
	_, adminToken := s.User("boss", models.RoleAdmin)
	_, aliceToken := s.User("alice", models.RoleUser)
	_, bobToken := s.User("bob", models.RoleUser)
	menuID := createMenu(t, s, adminToken, "Coffee", 3000)

	body := map[string]interface{}{"menuId": menuID, "quantity": 1, "paymentMethod": "cash", "seatNumber": 1}
	first := placeOrder(t, s, aliceToken, body)
	second := placeOrder(t, s, aliceToken, body)
	bobs := placeOrder(t, s, bobToken, body)

	var views []models.OrderView
	w := s.Do(http.MethodGet, "/api/orders", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.DecodeData(t, w, &views)
	require.Len(t, views, 2)
	assert.Equal(t, second.ID, views[0].ID)
	assert.Equal(t, first.ID, views[1].ID)
	assert.Equal(t, int64(3000), views[0].Price)
	assert.Empty(t, views[0].RegisterID)

	w = s.Do(http.MethodGet, "/api/orders", nil, adminToken)
	testutil.DecodeData(t, w, &views)
	require.Len(t, views, 3)
	assert.Equal(t, "bob", views[0].RegisterID)

	w = s.Do(http.MethodGet, "/api/orders/"+strconv.Itoa(int(bobs.ID)), nil, aliceToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var view models.OrderView
	w = s.Do(http.MethodGet, "/api/orders/"+strconv.Itoa(int(bobs.ID)), nil, bobToken)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.DecodeData(t, w, &view)
	assert.Equal(t, "Coffee", view.MenuName)
	assert.Equal(t, 1, view.Quantity)

	var empty []models.OrderView
	_, carolToken := s.User("carol", models.RoleUser)
	w = s.Do(http.MethodGet, "/api/orders", nil, carolToken)
	testutil.DecodeData(t, w, &empty)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestUpdateOrderStatusEndpoint(t *testing.T) {
	s := testutil.NewServer(t)
	_, adminToken := s.User("boss", models.RoleAdmin)
	_, token := s.User("u1", models.RoleUser)
	menuID := createMenu(t, s, adminToken, "Coffee", 3000)
	order := placeOrder(t, s, token, map[string]interface{}{
		"menuId": menuID, "quantity": 1, "paymentMethod": "cash", "seatNumber": 1,
	})
	target := "/api/orders/" + strconv.Itoa(int(order.ID))

	w := s.Do(http.MethodPut, target, map[string]interface{}{"status": "completed"}, token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.Do(http.MethodPut, target, map[string]interface{}{"status": "served"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.Do(http.MethodPut, "/api/orders/9999", map[string]interface{}{"status": "completed"}, adminToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var updated createdOrder
	w = s.Do(http.MethodPut, target, map[string]interface{}{"status": "completed"}, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.DecodeData(t, w, &updated)
	assert.Equal(t, models.OrderStatusCompleted, updated.Status)

	w = s.Do(http.MethodPut, target, map[string]interface{}{"status": "pending"}, adminToken)
	assert.Equal(t, http.StatusConflict, w.Code)
}
