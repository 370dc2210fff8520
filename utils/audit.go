package utils

import (
	"github.com/nivedh-07/TechCare/config"
	"github.com/nivedh-07/TechCare/models"
)

// WriteAuditLog appends an entry to the purchase audit log. Persistence
// failures are logged and swallowed so an audit write can never interrupt
// the primary flow.
func WriteAuditLog(userID *uint, serviceID, action, details string, success bool, errMessage string) {
	entry := models.AuditLog{
		UserID:       userID,
		ServiceID:    serviceID,
		Action:       action,
		Details:      details,
		Success:      success,
		ErrorMessage: errMessage,
	}
	if err := config.DB.Create(&entry).Error; err != nil {
		LogError("Failed to write audit log entry (action=%s, success=%v): %v", action, success, err)
	}
}
