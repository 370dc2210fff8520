package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceValidate(t *testing.T) {
	svc := Service{
		Name: "Email Migration & Setup",
		PackagePrices: PackagePriceMap{
			PackageBasic:    4.00,
			PackageStandard: 6.50,
		},
		PackageFeatures: PackageFeatureMap{
			PackageBasic:    {"Up to 10 mailboxes"},
			PackageStandard: {"Up to 50 mailboxes", "Priority support"},
		},
	}
	assert.NoError(t, svc.Validate())

	svc.PackagePrices[PackageEnterprise] = 20.00
	err := svc.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no feature entry")

	svc.PackageFeatures[PackageEnterprise] = []string{"Unlimited mailboxes"}
	svc.PackagePrices[PackageBasic] = 0
	err = svc.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "non-positive price")
}

func TestServiceHasPackage(t *testing.T) {
	svc := Service{PackagePrices: PackagePriceMap{PackageBasic: 4.00}}
	assert.True(t, svc.HasPackage(PackageBasic))
	assert.False(t, svc.HasPackage(PackageEnterprise))
}

func TestOrderAmountByCurrency(t *testing.T) {
	order := Order{
		AmountUSD: 200.00,
		AmountINR: 16650.00,
		AmountAED: 734.00,
	}

	order.Currency = "USD"
	assert.Equal(t, 200.00, order.Amount())
	order.Currency = "INR"
	assert.Equal(t, 16650.00, order.Amount())
	order.Currency = "AED"
	assert.Equal(t, 734.00, order.Amount())
	order.Currency = "XYZ"
	assert.Equal(t, 200.00, order.Amount())
}
