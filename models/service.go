package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Package tier constants
const (
	PackageBasic      = "basic"
	PackageStandard   = "standard"
	PackageEnterprise = "enterprise"
)

// PackagePriceMap maps a package tier to its unit price in USD.
// Stored as a JSON column so sparse tiers stay sparse.
type PackagePriceMap map[string]float64

func (m PackagePriceMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *PackagePriceMap) Scan(value interface{}) error {
	return scanJSON(value, m)
}

// PackageFeatureMap maps a package tier to its ordered feature list.
type PackageFeatureMap map[string][]string

func (m PackageFeatureMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *PackageFeatureMap) Scan(value interface{}) error {
	return scanJSON(value, m)
}

func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
}

// Service represents an IT support service in the catalog
type Service struct {
	ID              string            `gorm:"primaryKey;type:text" json:"id"`
	Name            string            `gorm:"not null" json:"name"`
	Category        string            `json:"category"`
	Description     string            `json:"description"`
	PackagePrices   PackagePriceMap   `gorm:"type:text" json:"package_prices"`
	PackageFeatures PackageFeatureMap `gorm:"type:text" json:"package_features"`
	Active          bool              `gorm:"default:true" json:"active"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Validate checks the catalog invariants: every priced tier has a feature
// entry and every price is strictly positive.
func (s *Service) Validate() error {
	for tier, price := range s.PackagePrices {
		if price <= 0 {
			return fmt.Errorf("service %s: tier %s has non-positive price %.2f", s.Name, tier, price)
		}
		if _, ok := s.PackageFeatures[tier]; !ok {
			return fmt.Errorf("service %s: tier %s has a price but no feature entry", s.Name, tier)
		}
	}
	return nil
}

// HasPackage reports whether the tier exists in the price mapping
func (s *Service) HasPackage(tier string) bool {
	_, ok := s.PackagePrices[tier]
	return ok
}
