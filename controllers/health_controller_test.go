package controllers

import (
	"testing"

	"github.com/nivedh-07/TechCare/config"
	"github.com/nivedh-07/TechCare/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSystemHealthAllGood(t *testing.T) {
	_, _, stub := setupIntentTest(t)
	stub.healthy = true

	status := CheckSystemHealth()
	assert.True(t, status.Database)
	assert.True(t, status.CatalogNonEmpty)
	assert.True(t, status.Invoicing)
	assert.True(t, status.Overall)
	assert.Empty(t, status.Issues)
}

func TestCheckSystemHealthInvoicingDownIsNotFatal(t *testing.T) {
	_, _, stub := setupIntentTest(t)
	stub.healthy = false

	status := CheckSystemHealth()
	assert.True(t, status.Database)
	assert.False(t, status.Invoicing)
	// Invoicing has fallback channels, so the overall verdict holds
	assert.True(t, status.Overall)
	require.Len(t, status.Issues, 1)
	assert.Contains(t, status.Issues[0], "invoicing provider")
}

func TestCheckSystemHealthEmptyCatalog(t *testing.T) {
	_, _, stub := setupIntentTest(t)
	stub.healthy = true

	require.NoError(t, config.DB.Unscoped().Where("1 = 1").Delete(&models.Service{}).Error)

	status := CheckSystemHealth()
	assert.True(t, status.Database)
	assert.False(t, status.CatalogNonEmpty)
	assert.False(t, status.Overall)
}
