package services_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/yeremiapane/pc-cafe/config"
	"github.com/yeremiapane/pc-cafe/models"
	"github.com/yeremiapane/pc-cafe/testutil"
	"github.com/yeremiapane/pc-cafe/utils"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Broadcast(event string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func setup(t *testing.T) (*gorm.DB, *config.Config) {
	cfg := testutil.Config(t)
	return testutil.NewDB(t, cfg), cfg
}

func reload(t *testing.T, db *gorm.DB, id uint) models.User {
	var u models.User
	if err := db.First(&u, id).Error; err != nil {
		t.Fatalf("reload user %d: %v", id, err)
	}
	return u
}

func seatOf(t *testing.T, db *gorm.DB, number uint) models.Seat {
	var s models.Seat
	if err := db.First(&s, "number = ?", number).Error; err != nil {
		t.Fatalf("load seat %d: %v", number, err)
	}
	return s
}

func assertKind(t *testing.T, err error, kind utils.ErrorKind) {
	t.Helper()
	assert.Error(t, err)
	assert.True(t, utils.IsKind(err, kind), "unexpected error: %v", err)
}
