package routes

import (
	"github.com/gin-gonic/gin"

	charthandler "github.com/kgcrom/cluefin-sub000/internal/api/handlers/chart"
)

// RegisterChartRoutes mounts the chart import API under group (/api/v1).
func RegisterChartRoutes(group *gin.RouterGroup, h *charthandler.Handler) {
	charts := group.Group("/charts")
	{
		charts.POST("/domestic/import", h.ImportDomestic)
		charts.POST("/overseas/import", h.ImportOverseas)
		charts.GET("/jobs/:id", h.GetJob)
		charts.GET("/stats", h.GetStats)
		charts.GET("/fetch-logs", h.GetFetchLogs)
	}
}
