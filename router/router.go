package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos-terminal/controllers"
	"github.com/yeremiapane/restaurant-pos-terminal/middlewares"
	"github.com/yeremiapane/restaurant-pos-terminal/notifier"
	"github.com/yeremiapane/restaurant-pos-terminal/services"
)

// SetupRouter menyusun seluruh endpoint terminal untuk front-end POS.
func SetupRouter(service *services.OrderSyncService, monitor *services.SyncMonitor, hub *notifier.Hub) *gin.Engine {
	r := gin.Default()
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	tableCtrl := controllers.NewTableOrderController(service)
	tabCtrl := controllers.NewCustomerTabController(service)
	syncCtrl := controllers.NewSyncController(service, monitor)

	tables := r.Group("/table-orders")
	{
		tables.GET("", tableCtrl.GetAllTableOrders)
		tables.POST("", tableCtrl.CreateTableOrder)
		tables.GET("/:table_number", tableCtrl.GetTableOrder)
		tables.GET("/:table_number/status", tableCtrl.GetTableStatus)
		tables.PUT("/:table_number/items", tableCtrl.UpdateTableItems)
		tables.POST("/:table_number/items", tableCtrl.AddTableItems)
		tables.DELETE("/:table_number/items/:index", tableCtrl.RemoveTableItem)
		tables.POST("/:table_number/complete", tableCtrl.CompleteTableOrder)
		tables.POST("/:table_number/reset", tableCtrl.ResetTableToAvailable)
		tables.GET("/:table_number/linked-group", tableCtrl.GetLinkedTableGroup)
		tables.GET("/:table_number/linked-group/items", tableCtrl.GetLinkedTableItems)

		tables.GET("/:table_number/tabs", tabCtrl.GetTabsForTable)
		tables.GET("/:table_number/tabs/active", tabCtrl.GetActiveTab)
		tables.PUT("/:table_number/tabs/active", tabCtrl.SetActiveTab)
	}

	tabs := r.Group("/customer-tabs")
	{
		tabs.POST("", tabCtrl.CreateTab)
		tabs.PATCH("/:tab_id", tabCtrl.UpdateTab)
		tabs.DELETE("/:tab_id", tabCtrl.DeleteTab)
		tabs.POST("/:tab_id/items", tabCtrl.AddTabItems)
		tabs.PUT("/:tab_id/items", tabCtrl.ReplaceTabItems)
		tabs.DELETE("/:tab_id/items/:index", tabCtrl.RemoveTabItem)
		tabs.POST("/:tab_id/close", tabCtrl.CloseTab)
		tabs.POST("/split", tabCtrl.SplitTab)
		tabs.POST("/merge", tabCtrl.MergeTabs)
		tabs.POST("/move-items", tabCtrl.MoveItems)
	}

	sync := r.Group("/sync")
	{
		sync.POST("/refresh", syncCtrl.ForceRefresh)
		sync.GET("/consistency/:table_number", syncCtrl.CheckConsistency)
		sync.GET("/errors", syncCtrl.GetErrors)
		sync.DELETE("/errors", syncCtrl.ClearErrors)
		sync.DELETE("/errors/tables/:table_number", syncCtrl.ClearTableError)
		sync.DELETE("/errors/tabs/:tab_id", syncCtrl.ClearTabError)
	}

	if hub != nil {
		r.GET("/ws", hub.ServeWS)
	}

	return r
}
