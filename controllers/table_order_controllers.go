package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos-terminal/models"
	"github.com/yeremiapane/restaurant-pos-terminal/services"
	"github.com/yeremiapane/restaurant-pos-terminal/utils"
)

// respondServiceError -> map taxonomy error engine ke status HTTP
func respondServiceError(c *gin.Context, err error) {
	switch {
	case services.IsValidationError(err):
		utils.RespondError(c, http.StatusBadRequest, err)
	case services.IsNotFoundError(err):
		utils.RespondError(c, http.StatusNotFound, err)
	case services.IsRemoteFailure(err):
		// mutasi sudah di-rollback; state yang terlihat user tetap utuh
		utils.RespondError(c, http.StatusBadGateway, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

func parseTableNumber(c *gin.Context) (int, bool) {
	tableNumber, err := strconv.Atoi(c.Param("table_number"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return 0, false
	}
	return tableNumber, true
}

type TableOrderController struct {
	Service *services.OrderSyncService
}

func NewTableOrderController(service *services.OrderSyncService) *TableOrderController {
	return &TableOrderController{Service: service}
}

// GetAllTableOrders -> seluruh order meja yang sedang terbuka
func (tc *TableOrderController) GetAllTableOrders(c *gin.Context) {
	orders := tc.Service.GetTableOrders()
	utils.RespondJSON(c, http.StatusOK, "List of table orders", orders)
}

// GetTableOrder -> order satu meja plus total harganya
func (tc *TableOrderController) GetTableOrder(c *gin.Context) {
	tableNumber, ok := parseTableNumber(c)
	if !ok {
		return
	}
	order, found := tc.Service.GetTableOrder(tableNumber)
	if !found {
		utils.RespondError(c, http.StatusNotFound, models.NewTableNotFound(tableNumber))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table order", gin.H{
		"order": order,
		"total": utils.FormatCurrency(order.Total()),
	})
}

// GetTableStatus -> available / seated
func (tc *TableOrderController) GetTableStatus(c *gin.Context) {
	tableNumber, ok := parseTableNumber(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table status", gin.H{
		"table_number": tableNumber,
		"status":       tc.Service.GetTableStatus(tableNumber),
	})
}

// CreateTableOrder -> seat tamu di meja (plus meja tambahan kalau di-link)
func (tc *TableOrderController) CreateTableOrder(c *gin.Context) {
	var req struct {
		TableNumber  int   `json:"table_number" binding:"required"`
		GuestCount   int   `json:"guest_count" binding:"required"`
		LinkedTables []int `json:"linked_tables"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := tc.Service.Create(c.Request.Context(), req.TableNumber, req.GuestCount, req.LinkedTables)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table order created", order)
}

// UpdateTableItems -> replace item list meja
func (tc *TableOrderController) UpdateTableItems(c *gin.Context) {
	tableNumber, ok := parseTableNumber(c)
	if !ok {
		return
	}
	var req struct {
		Items []models.OrderItem `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := tc.Service.UpdateItems(c.Request.Context(), tableNumber, req.Items)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table items updated", order)
}

// AddTableItems -> append item ke meja
func (tc *TableOrderController) AddTableItems(c *gin.Context) {
	tableNumber, ok := parseTableNumber(c)
	if !ok {
		return
	}
	var req struct {
		Items []models.OrderItem `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := tc.Service.AddItems(c.Request.Context(), tableNumber, req.Items)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Items added to table", order)
}

// RemoveTableItem -> hapus satu item meja berdasarkan posisi
func (tc *TableOrderController) RemoveTableItem(c *gin.Context) {
	tableNumber, ok := parseTableNumber(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := tc.Service.RemoveItem(c.Request.Context(), tableNumber, index)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item removed from table", order)
}

// CompleteTableOrder -> settlement final: order hilang dari cache
func (tc *TableOrderController) CompleteTableOrder(c *gin.Context) {
	tableNumber, ok := parseTableNumber(c)
	if !ok {
		return
	}
	if err := tc.Service.Complete(c.Request.Context(), tableNumber); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table order completed", nil)
}

// ResetTableToAvailable -> void/abandon bill tanpa settlement
func (tc *TableOrderController) ResetTableToAvailable(c *gin.Context) {
	tableNumber, ok := parseTableNumber(c)
	if !ok {
		return
	}
	if err := tc.Service.ResetToAvailable(c.Request.Context(), tableNumber); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table reset to available", nil)
}

// GetLinkedTableGroup -> view agregat meja yang di-link
func (tc *TableOrderController) GetLinkedTableGroup(c *gin.Context) {
	tableNumber, ok := parseTableNumber(c)
	if !ok {
		return
	}
	group := tc.Service.GetLinkedTableGroup(tableNumber)
	if group == nil {
		utils.RespondError(c, http.StatusNotFound, models.NewTableNotFound(tableNumber))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Linked table group", group)
}

// GetLinkedTableItems -> gabungan item seluruh meja dalam group
func (tc *TableOrderController) GetLinkedTableItems(c *gin.Context) {
	tableNumber, ok := parseTableNumber(c)
	if !ok {
		return
	}
	items := tc.Service.GetTotalOrdersForLinkedTables(tableNumber)
	if items == nil {
		utils.RespondError(c, http.StatusNotFound, models.NewTableNotFound(tableNumber))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Combined linked table items", gin.H{
		"items": items,
		"total": utils.FormatCurrency(models.ItemsTotal(items)),
	})
}
