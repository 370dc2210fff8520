package utils

import (
	"regexp"
	"strings"

	"github.com/nivedh-07/TechCare/config"
	"github.com/nivedh-07/TechCare/models"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// ResolveServiceID maps an external-facing identifier (UUID, name fragment
// or category fragment) to the catalog id. The stages are ordered precision
// first: exact id, then name substring, then category substring, then a
// last-resort fuzzy pass over a bounded sample.
func ResolveServiceID(identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", NewPaymentError(ErrServiceNotFound, "Service identifier is empty", nil)
	}

	db := config.DB

	// Stage 1: direct primary-key match for UUID-shaped identifiers
	if uuidPattern.MatchString(identifier) {
		var service models.Service
		if err := db.Where("id = ?", identifier).First(&service).Error; err == nil {
			LogDebug("Resolved service %q by primary key", identifier)
			return service.ID, nil
		}
	}

	// Stage 2: case-insensitive name substring
	// LOWER(...) LIKE keeps the query portable between postgres and sqlite.
	var service models.Service
	pattern := "%" + strings.ToLower(identifier) + "%"
	if err := db.Where("LOWER(name) LIKE ?", pattern).First(&service).Error; err == nil {
		LogDebug("Resolved service %q by name match: %s", identifier, service.ID)
		return service.ID, nil
	}

	// Stage 3: case-insensitive category substring
	if err := db.Where("LOWER(category) LIKE ?", pattern).First(&service).Error; err == nil {
		LogDebug("Resolved service %q by category match: %s", identifier, service.ID)
		return service.ID, nil
	}

	// Stage 4: fuzzy pass over a bounded sample, accepting bidirectional
	// containment between the identifier and the service name
	var sample []models.Service
	if err := db.Limit(10).Find(&sample).Error; err == nil {
		needle := strings.ToLower(identifier)
		for _, s := range sample {
			name := strings.ToLower(s.Name)
			if strings.Contains(name, needle) || strings.Contains(needle, name) {
				LogDebug("Resolved service %q by fuzzy match: %s", identifier, s.ID)
				return s.ID, nil
			}
		}
	}

	LogError("Service identifier %q did not resolve in any stage", identifier)
	return "", NewPaymentError(ErrServiceNotFound, "Service not found", nil)
}
