package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos-terminal/services"
	"github.com/yeremiapane/restaurant-pos-terminal/utils"
)

// SyncController mengekspos force refresh, pemeriksaan konsistensi, dan
// inspeksi/clear error ke presentasi.
type SyncController struct {
	Service *services.OrderSyncService
	Monitor *services.SyncMonitor
}

func NewSyncController(service *services.OrderSyncService, monitor *services.SyncMonitor) *SyncController {
	return &SyncController{Service: service, Monitor: monitor}
}

// ForceRefresh -> reload eager seluruh state, melewati timer sync
func (sc *SyncController) ForceRefresh(c *gin.Context) {
	if err := sc.Monitor.ForceRefresh(c.Request.Context()); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "State refreshed", sc.Service.GetTableOrders())
}

// CheckConsistency -> bandingkan lapis optimistic vs confirmed satu meja
func (sc *SyncController) CheckConsistency(c *gin.Context) {
	tableNumber, ok := parseTableNumber(c)
	if !ok {
		return
	}
	consistent := sc.Service.ValidateConsistency(tableNumber)
	utils.RespondJSON(c, http.StatusOK, "Consistency check", gin.H{
		"table_number": tableNumber,
		"consistent":   consistent,
	})
}

// GetErrors -> error tercatat per meja, per tab, dan global
func (sc *SyncController) GetErrors(c *gin.Context) {
	tables, tabs, global := sc.Service.Errors().Snapshot()
	utils.RespondJSON(c, http.StatusOK, "Recorded errors", gin.H{
		"tables": tables,
		"tabs":   tabs,
		"global": global,
	})
}

// ClearErrors -> hapus seluruh error tercatat
func (sc *SyncController) ClearErrors(c *gin.Context) {
	sc.Service.Errors().ClearAll()
	utils.RespondJSON(c, http.StatusOK, "Errors cleared", nil)
}

// ClearTableError -> hapus error satu meja setelah notifikasi dilihat
func (sc *SyncController) ClearTableError(c *gin.Context) {
	tableNumber, ok := parseTableNumber(c)
	if !ok {
		return
	}
	sc.Service.Errors().ClearTableError(tableNumber)
	utils.RespondJSON(c, http.StatusOK, "Table error cleared", nil)
}

// ClearTabError -> hapus error satu tab
func (sc *SyncController) ClearTabError(c *gin.Context) {
	sc.Service.Errors().ClearTabError(c.Param("tab_id"))
	utils.RespondJSON(c, http.StatusOK, "Tab error cleared", nil)
}
