package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/pc-cafe/config"
	"github.com/yeremiapane/pc-cafe/models"
	"github.com/yeremiapane/pc-cafe/services"
	"github.com/yeremiapane/pc-cafe/testutil"
)

func TestTimeMeter_TickFloorsAtZero(t *testing.T) {
	db, _ := setup(t)
	ctx := context.Background()

	rich := testutil.CreateUser(t, db, "rich", "p", models.RoleUser)
	poor := testutil.CreateUser(t, db, "poor", "p", models.RoleUser)
	broke := testutil.CreateUser(t, db, "broke", "p", models.RoleUser)
	require.NoError(t, db.Model(rich).Update("remaining_time", 100).Error)
	require.NoError(t, db.Model(poor).Update("remaining_time", 2).Error)

	meter := services.NewTimeMeter(db, config.MeteringConfig{Interval: 3 * time.Second, Scope: config.MeteringScopeAll})

	affected, err := meter.Tick(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
	assert.Equal(t, int64(97), reload(t, db, rich.ID).RemainingTime)
	assert.Equal(t, int64(0), reload(t, db, poor.ID).RemainingTime)
	assert.Equal(t, int64(0), reload(t, db, broke.ID).RemainingTime)

	affected, err = meter.Tick(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.Equal(t, int64(0), reload(t, db, poor.ID).RemainingTime)
}

func TestTimeMeter_SeatedScope(t *testing.T) {
	db, cfg := setup(t)
	ctx := context.Background()
	seats := services.NewSeatService(db, cfg.Seats.Count, nil)

	seated := testutil.CreateUser(t, db, "seated", "p", models.RoleUser)
	away := testutil.CreateUser(t, db, "away", "p", models.RoleUser)
	require.NoError(t, db.Model(&models.User{}).Where("id IN ?", []uint{seated.ID, away.ID}).Update("remaining_time", 60).Error)
	_, err := seats.BindSeat(ctx, seated, 9)
	require.NoError(t, err)

	meter := services.NewTimeMeter(db, config.MeteringConfig{Interval: time.Second, Scope: config.MeteringScopeSeated})
	affected, err := meter.Tick(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.Equal(t, int64(59), reload(t, db, seated.ID).RemainingTime)
	assert.Equal(t, int64(60), reload(t, db, away.ID).RemainingTime)
}

func TestTimeMeter_StartStop(t *testing.T) {
	db, _ := setup(t)
	u := testutil.CreateUser(t, db, "loop", "p", models.RoleUser)
	require.NoError(t, db.Model(u).Update("remaining_time", 100).Error)

	meter := services.NewTimeMeter(db, config.MeteringConfig{Interval: time.Second})
	assert.Equal(t, config.MeteringScopeAll, meter.Scope)

	meter.Start(context.Background())
	assert.Eventually(t, func() bool {
		return reload(t, db, u.ID).RemainingTime < 100
	}, 3*time.Second, 50*time.Millisecond)
	meter.Stop()
	meter.Stop()

	after := reload(t, db, u.ID).RemainingTime
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, after, reload(t, db, u.ID).RemainingTime)
}

func TestTimeMeter_ContextCancel(t *testing.T) {
	db, _ := setup(t)
	ctx, cancel := context.WithCancel(context.Background())

	meter := services.NewTimeMeter(db, config.MeteringConfig{Interval: time.Second})
	meter.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		meter.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("meter did not stop after context cancel")
	}
}
