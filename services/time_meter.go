package services

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/pc-cafe/config"
	"github.com/yeremiapane/pc-cafe/metrics"
	"github.com/yeremiapane/pc-cafe/models"
	"github.com/yeremiapane/pc-cafe/utils"
)

// TimeMeter counts down every user's remaining time on a fixed interval.
type TimeMeter struct {
	DB       *gorm.DB
	Interval time.Duration
	Scope    string

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func NewTimeMeter(db *gorm.DB, cfg config.MeteringConfig) *TimeMeter {
	interval := cfg.Interval
	if interval < time.Second {
		interval = time.Second
	}
	scope := cfg.Scope
	if scope == "" {
		scope = config.MeteringScopeAll
	}
	return &TimeMeter{
		DB:       db,
		Interval: interval,
		Scope:    scope,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the loop until ctx is cancelled or Stop is called.
func (m *TimeMeter) Start(ctx context.Context) {
	go func() {
		defer close(m.done)

		ticker := time.NewTicker(m.Interval)
		defer ticker.Stop()

		utils.InfoLogger.Printf("Time meter started (interval=%s, scope=%s)", m.Interval, m.Scope)
		for {
			select {
			case <-ticker.C:
				affected, err := m.Tick(ctx)
				metrics.RecordTick(affected, err)
				if err != nil && ctx.Err() == nil {
					utils.ErrorLogger.WithError(err).Error("time meter: tick failed")
				}
			case <-ctx.Done():
				utils.InfoLogger.Println("Time meter stopped")
				return
			case <-m.stop:
				utils.InfoLogger.Println("Time meter stopped")
				return
			}
		}
	}()
}

// Stop ends the loop and waits for the goroutine to exit. Only valid after Start.
func (m *TimeMeter) Stop() {
	m.once.Do(func() { close(m.stop) })
	<-m.done
}

// Tick applies one decrement and reports how many users were charged.
func (m *TimeMeter) Tick(ctx context.Context) (int64, error) {
	step := int64(m.Interval / time.Second)
	if step < 1 {
		step = 1
	}

	q := m.DB.WithContext(ctx).Model(&models.User{}).Where("remaining_time > 0")
	if m.Scope == config.MeteringScopeSeated {
		q = q.Where("id IN (?)", m.DB.Model(&models.Seat{}).Select("user_id").Where("user_id IS NOT NULL"))
	}

	res := q.Update("remaining_time", floorSubtract(step))
	return res.RowsAffected, res.Error
}
