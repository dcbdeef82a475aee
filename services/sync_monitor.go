package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/yeremiapane/restaurant-pos-terminal/utils"
)

// SyncMonitor menjalankan reconciliation periodik: setiap interval, list tab
// otoritatif ditarik ulang untuk meja yang punya tab aktif dan dimasukkan ke
// lapis confirmed. Satu flag in-flight (bukan per meja) mencegah dua sweep
// refresh tumpang tindih; mutasi tidak pernah antri di belakang monitor.
type SyncMonitor struct {
	service  *OrderSyncService
	Interval time.Duration
	StopChan chan struct{}
	inFlight atomic.Bool
}

func NewSyncMonitor(service *OrderSyncService) *SyncMonitor {
	return &SyncMonitor{
		service:  service,
		Interval: 30 * time.Second,
		StopChan: make(chan struct{}),
	}
}

func (m *SyncMonitor) Start() {
	go func() {
		ticker := time.NewTicker(m.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.tick()
			case <-m.StopChan:
				return
			}
		}
	}()
	utils.InfoLogger.Printf("Sync monitor started (interval %v)", m.Interval)
}

func (m *SyncMonitor) Stop() {
	close(m.StopChan)
}

func (m *SyncMonitor) tick() {
	if !m.inFlight.CompareAndSwap(false, true) {
		// sweep sebelumnya masih jalan, lewati siklus ini
		return
	}
	defer m.inFlight.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), m.Interval)
	defer cancel()
	m.service.RefreshTabsForActiveTables(ctx)
}

// ForceRefresh -> reload eager seluruh order meja, melewati timer
func (m *SyncMonitor) ForceRefresh(ctx context.Context) error {
	return m.service.ForceRefresh(ctx)
}
