package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeremiapane/pc-cafe/hub"
	"github.com/yeremiapane/pc-cafe/models"
	"github.com/yeremiapane/pc-cafe/services"
	"github.com/yeremiapane/pc-cafe/testutil"
	"github.com/yeremiapane/pc-cafe/utils"
)

type orderFixture struct {
	db     *gorm.DB
	seats  *services.SeatService
	orders *services.OrderService
	events *recorder
	menu   models.Menu
	alice  *utils.CustomClaims
	bob    *utils.CustomClaims
	admin  *utils.CustomClaims
}

func claimsFor(u *models.User) *utils.CustomClaims {
	return &utils.CustomClaims{UserID: u.ID, RegisterID: u.RegisterID, Name: u.Name, Role: u.Role}
}

func newOrderFixture(t *testing.T, permissive bool) *orderFixture {
	db, cfg := setup(t)
	events := &recorder{}
	seats := services.NewSeatService(db, cfg.Seats.Count, nil)

	menu := models.Menu{Name: "Coffee", Price: 3000}
	require.NoError(t, db.Create(&menu).Error)

	return &orderFixture{
		db:     db,
		seats:  seats,
		orders: services.NewOrderService(db, seats, events, permissive),
		events: events,
		menu:   menu,
		alice:  claimsFor(testutil.CreateUser(t, db, "alice", "p", models.RoleUser)),
		bob:    claimsFor(testutil.CreateUser(t, db, "bob", "p", models.RoleUser)),
		admin:  claimsFor(testutil.CreateUser(t, db, "boss", "p", models.RoleAdmin)),
	}
}

func (f *orderFixture) place(t *testing.T, caller *utils.CustomClaims, seat uint) *models.Order {
	order, err := f.orders.Create(context.Background(), caller, services.CreateOrderInput{
		MenuID:        f.menu.ID,
		Quantity:      2,
		PaymentMethod: models.PaymentCash,
		SeatNumber:    seat,
	})
	require.NoError(t, err)
	return order
}

func TestOrderCreate(t *testing.T) {
	f := newOrderFixture(t, false)
	ctx := context.Background()

	order := f.place(t, f.alice, 1)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, uint(1), order.SeatNumber)
	assert.Equal(t, "Name alice", order.UserName)
	assert.Equal(t, "Coffee", order.MenuName)
	assert.Equal(t, []string{hub.EventOrderCreate}, f.events.Events())

	t.Run("bound seat wins over body", func(t *testing.T) {
		user := models.User{ID: f.bob.UserID, RegisterID: f.bob.RegisterID, Name: f.bob.Name}
		_, err := f.seats.BindSeat(ctx, &user, 12)
		require.NoError(t, err)

		order := f.place(t, f.bob, 3)
		assert.Equal(t, uint(12), order.SeatNumber)
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name string
			in   services.CreateOrderInput
		}{
			{"unknown menu", services.CreateOrderInput{MenuID: 999, Quantity: 1, PaymentMethod: models.PaymentCash, SeatNumber: 1}},
			{"zero quantity", services.CreateOrderInput{MenuID: f.menu.ID, Quantity: 0, PaymentMethod: models.PaymentCash, SeatNumber: 1}},
			{"bad payment", services.CreateOrderInput{MenuID: f.menu.ID, Quantity: 1, PaymentMethod: "iou", SeatNumber: 1}},
			{"seat out of range", services.CreateOrderInput{MenuID: f.menu.ID, Quantity: 1, PaymentMethod: models.PaymentCard, SeatNumber: 50}},
		}
		for _, tt := range tests {
			_, err := f.orders.Create(ctx, f.alice, tt.in)
			assertKind(t, err, utils.KindBadRequest)
		}
	})
}

func TestOrderSnapshotsSurviveRename(t *testing.T) {
	f := newOrderFixture(t, false)
	ctx := context.Background()
	order := f.place(t, f.alice, 1)

	require.NoError(t, f.db.Model(&f.menu).Updates(map[string]interface{}{"name": "Espresso", "price": 4000}).Error)
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", f.alice.UserID).Update("name", "Alicia").Error)

	view, err := f.orders.Get(ctx, f.alice, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Coffee", view.MenuName)
	assert.Equal(t, "Name alice", view.UserName)
	assert.Equal(t, int64(4000), view.Price)
}

func TestOrderList_Visibility(t *testing.T) {
	f := newOrderFixture(t, false)
	ctx := context.Background()

	first := f.place(t, f.alice, 1)
	f.place(t, f.bob, 2)
	last := f.place(t, f.alice, 1)

	mine, err := f.orders.List(ctx, f.alice)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, last.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)
	for _, o := range mine {
		assert.Equal(t, f.alice.UserID, o.UserID)
		assert.Empty(t, o.RegisterID)
		assert.Equal(t, int64(3000), o.Price)
	}

	all, err := f.orders.List(ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, last.ID, all[0].ID)
	assert.Equal(t, "alice", all[0].RegisterID)
	assert.Equal(t, "bob", all[1].RegisterID)

	_, err = f.orders.Get(ctx, f.bob, first.ID)
	assertKind(t, err, utils.KindNotFound)
	got, err := f.orders.Get(ctx, f.admin, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestOrderList_Empty(t *testing.T) {
	f := newOrderFixture(t, false)
	orders, err := f.orders.List(context.Background(), f.alice)
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestOrderUpdateStatus(t *testing.T) {
	f := newOrderFixture(t, false)
	ctx := context.Background()
	order := f.place(t, f.alice, 1)

	updated, err := f.orders.UpdateStatus(ctx, order.ID, models.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, updated.Status)

	_, err = f.orders.UpdateStatus(ctx, order.ID, models.OrderStatusPending)
	assertKind(t, err, utils.KindConflict)

	_, err = f.orders.UpdateStatus(ctx, order.ID, models.OrderStatusCompleted)
	require.NoError(t, err)

	// same status is a no-op
	_, err = f.orders.UpdateStatus(ctx, order.ID, models.OrderStatusCompleted)
	require.NoError(t, err)

	_, err = f.orders.UpdateStatus(ctx, order.ID, models.OrderStatusCancelled)
	assertKind(t, err, utils.KindConflict)

	_, err = f.orders.UpdateStatus(ctx, order.ID, models.OrderStatus("lost"))
	assertKind(t, err, utils.KindBadRequest)

	_, err = f.orders.UpdateStatus(ctx, 4242, models.OrderStatusCompleted)
	assertKind(t, err, utils.KindNotFound)

	var stored models.Order
	require.NoError(t, f.db.First(&stored, order.ID).Error)
	assert.Equal(t, models.OrderStatusCompleted, stored.Status)
}

func TestOrderUpdateStatus_Permissive(t *testing.T) {
	f := newOrderFixture(t, true)
	ctx := context.Background()
	order := f.place(t, f.alice, 1)

	_, err := f.orders.UpdateStatus(ctx, order.ID, models.OrderStatusCompleted)
	require.NoError(t, err)
	updated, err := f.orders.UpdateStatus(ctx, order.ID, models.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, updated.Status)
}
