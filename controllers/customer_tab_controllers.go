package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos-terminal/models"
	"github.com/yeremiapane/restaurant-pos-terminal/services"
	"github.com/yeremiapane/restaurant-pos-terminal/utils"
)

type CustomerTabController struct {
	Service *services.OrderSyncService
}

func NewCustomerTabController(service *services.OrderSyncService) *CustomerTabController {
	return &CustomerTabController{Service: service}
}

// GetTabsForTable -> seluruh tab satu meja
func (cc *CustomerTabController) GetTabsForTable(c *gin.Context) {
	tableNumber, ok := parseTableNumber(c)
	if !ok {
		return
	}
	tabs := cc.Service.GetCustomerTabsForTable(tableNumber)
	utils.RespondJSON(c, http.StatusOK, "List of customer tabs", tabs)
}

// GetActiveTab -> tab yang sedang dipilih untuk meja
func (cc *CustomerTabController) GetActiveTab(c *gin.Context) {
	tableNumber, ok := parseTableNumber(c)
	if !ok {
		return
	}
	tab, found := cc.Service.GetActiveCustomerTab(tableNumber)
	if !found {
		utils.RespondJSON(c, http.StatusOK, "No active tab", nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active customer tab", tab)
}

// SetActiveTab -> pilih tab aktif (aksi UI)
func (cc *CustomerTabController) SetActiveTab(c *gin.Context) {
	tableNumber, ok := parseTableNumber(c)
	if !ok {
		return
	}
	var req struct {
		TabID string `json:"tab_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := cc.Service.SetActiveCustomerTab(tableNumber, req.TabID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active tab updated", gin.H{"tab_id": req.TabID})
}

// CreateTab -> tab baru; response membawa id otoritatif dari server
func (cc *CustomerTabController) CreateTab(c *gin.Context) {
	var req struct {
		TableNumber int    `json:"table_number" binding:"required"`
		Name        string `json:"name" binding:"required"`
		GuestID     string `json:"guest_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tab, err := cc.Service.CreateTab(c.Request.Context(), req.TableNumber, req.Name, req.GuestID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Customer tab created", tab)
}

// UpdateTab -> partial update (nama / item / status)
func (cc *CustomerTabController) UpdateTab(c *gin.Context) {
	tabID := c.Param("tab_id")
	var req struct {
		Name   *string             `json:"name"`
		Items  *[]models.OrderItem `json:"items"`
		Status *string             `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tab, err := cc.Service.UpdateTab(c.Request.Context(), tabID, services.TabUpdate{
		Name:   req.Name,
		Items:  req.Items,
		Status: req.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customer tab updated", tab)
}

// AddTabItems -> append item ke tab
func (cc *CustomerTabController) AddTabItems(c *gin.Context) {
	tabID := c.Param("tab_id")
	var req struct {
		Items []models.OrderItem `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tab, err := cc.Service.AddItemsToTab(c.Request.Context(), tabID, req.Items)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Items added to tab", tab)
}

// ReplaceTabItems -> replace item list tab secara utuh
func (cc *CustomerTabController) ReplaceTabItems(c *gin.Context) {
	tabID := c.Param("tab_id")
	var req struct {
		Items []models.OrderItem `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tab, err := cc.Service.ReplaceTabItems(c.Request.Context(), tabID, req.Items)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tab items replaced", tab)
}

// RemoveTabItem -> hapus satu item tab berdasarkan posisi
func (cc *CustomerTabController) RemoveTabItem(c *gin.Context) {
	tabID := c.Param("tab_id")
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tab, err := cc.Service.RemoveItemFromTab(c.Request.Context(), tabID, index)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item removed from tab", tab)
}

// CloseTab -> tab selesai dibayar
func (cc *CustomerTabController) CloseTab(c *gin.Context) {
	tabID := c.Param("tab_id")
	if err := cc.Service.CloseTab(c.Request.Context(), tabID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customer tab closed", nil)
}

// DeleteTab -> tab dibatalkan
func (cc *CustomerTabController) DeleteTab(c *gin.Context) {
	tabID := c.Param("tab_id")
	if err := cc.Service.DeleteTab(c.Request.Context(), tabID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customer tab deleted", nil)
}

// SplitTab -> partisi item tab jadi dua tab
func (cc *CustomerTabController) SplitTab(c *gin.Context) {
	var req struct {
		SourceTabID string `json:"source_tab_id" binding:"required"`
		NewName     string `json:"new_name" binding:"required"`
		ItemIndices []int  `json:"item_indices"`
		GuestID     string `json:"guest_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := cc.Service.SplitTab(c.Request.Context(), req.SourceTabID, req.NewName, req.ItemIndices, req.GuestID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tab split", result)
}

// MergeTabs -> target menyerap item source, source dihapus
func (cc *CustomerTabController) MergeTabs(c *gin.Context) {
	var req struct {
		SourceTabID string `json:"source_tab_id" binding:"required"`
		TargetTabID string `json:"target_tab_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tab, err := cc.Service.MergeTabs(c.Request.Context(), req.SourceTabID, req.TargetTabID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Tabs merged", tab)
}

// MoveItems -> pindahkan item antar tab berdasarkan index
func (cc *CustomerTabController) MoveItems(c *gin.Context) {
	var req struct {
		SourceTabID string `json:"source_tab_id" binding:"required"`
		TargetTabID string `json:"target_tab_id" binding:"required"`
		ItemIndices []int  `json:"item_indices"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := cc.Service.MoveItems(c.Request.Context(), req.SourceTabID, req.TargetTabID, req.ItemIndices)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Items moved between tabs", result)
}
