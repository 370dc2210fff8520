package controllers

import (
	"github.com/nivedh-07/TechCare/config"
	"github.com/nivedh-07/TechCare/models"
	"github.com/nivedh-07/TechCare/utils"
	"github.com/gin-gonic/gin"
)

// HealthStatus is the system health snapshot
type HealthStatus struct {
	Database        bool     `json:"database"`
	Invoicing       bool     `json:"invoicing"`
	CatalogNonEmpty bool     `json:"catalog_non_empty"`
	Overall         bool     `json:"overall"`
	Issues          []string `json:"issues"`
}

// CheckSystemHealth probes the hard and soft dependencies. Invoicing is a
// soft dependency with a fallback path, so it is reported but does not gate
// the overall verdict.
func CheckSystemHealth() HealthStatus {
	status := HealthStatus{Issues: []string{}}

	if sqlDB, err := config.DB.DB(); err == nil && sqlDB.Ping() == nil {
		status.Database = true
	} else {
		status.Issues = append(status.Issues, "database is unreachable")
	}

	if status.Database {
		var count int64
		if err := config.DB.Model(&models.Service{}).Count(&count).Error; err == nil && count > 0 {
			status.CatalogNonEmpty = true
		} else {
			status.Issues = append(status.Issues, "service catalog is empty")
		}
	} else {
		status.Issues = append(status.Issues, "service catalog could not be checked")
	}

	if getInvoicer().HealthCheck() {
		status.Invoicing = true
	} else {
		status.Issues = append(status.Issues, "invoicing provider is unavailable; alternative payment channels remain active")
	}

	status.Overall = status.Database && status.CatalogNonEmpty
	return status
}

// SystemHealth handles GET /health
func SystemHealth(c *gin.Context) {
	requestID := utils.RequestID(c)
	utils.LogInfo("[%s] SystemHealth called", requestID)

	status := CheckSystemHealth()
	utils.Success(c, "System health retrieved", gin.H{
		"health":     status,
		"request_id": requestID,
	})
}

// RecentDiagnostics handles GET /admin/diagnostics/logs, exposing the
// bounded in-memory log buffer.
func RecentDiagnostics(c *gin.Context) {
	utils.Success(c, "Recent diagnostics retrieved", gin.H{
		"entries": utils.RecentLogs(),
	})
}
