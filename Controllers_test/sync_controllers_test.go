package Controllers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/yeremiapane/restaurant-pos-terminal/controllers"
	"github.com/yeremiapane/restaurant-pos-terminal/services"
)

func setupSyncRouter(svc *services.OrderSyncService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	ctrl := controllers.NewSyncController(svc, services.NewSyncMonitor(svc))
	router.POST("/sync/refresh", ctrl.ForceRefresh)
	router.GET("/sync/consistency/:table_number", ctrl.CheckConsistency)
	router.GET("/sync/errors", ctrl.GetErrors)
	router.DELETE("/sync/errors", ctrl.ClearErrors)
	router.DELETE("/sync/errors/tables/:table_number", ctrl.ClearTableError)
	return router
}

func TestForceRefreshEndpoint(t *testing.T) {
	svc := setupTerminalService(t)
	router := setupSyncRouter(svc)

	_, err := svc.Create(context.Background(), 5, 2, nil)
	assert.NoError(t, err)

	w, response := performJSON(t, router, "POST", "/sync/refresh", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "State refreshed", response["message"])
	orders := response["data"].([]interface{})
	assert.Len(t, orders, 1)
}

func TestConsistencyEndpoint(t *testing.T) {
	svc := setupTerminalService(t)
	router := setupSyncRouter(svc)

	_, err := svc.Create(context.Background(), 5, 2, nil)
	assert.NoError(t, err)

	w, response := performJSON(t, router, "GET", "/sync/consistency/5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, true, data["consistent"])
}

func TestErrorInspectionAndClearing(t *testing.T) {
	svc := setupTerminalService(t)
	router := setupSyncRouter(svc)

	svc.Errors().RecordTableError(5, "update_table_order failed: server unreachable")

	w, response := performJSON(t, router, "GET", "/sync/errors", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	tables := data["tables"].(map[string]interface{})
	assert.Contains(t, tables, "5")

	w, _ = performJSON(t, router, "DELETE", "/sync/errors/tables/5", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, response = performJSON(t, router, "GET", "/sync/errors", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data = response["data"].(map[string]interface{})
	assert.Empty(t, data["tables"])
}
