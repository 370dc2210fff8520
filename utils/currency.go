package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
)

// Supported currency codes
const (
	CurrencyUSD = "USD"
	CurrencyINR = "INR"
	CurrencyAED = "AED"
)

// Static fallback rates per 1 USD. Used whenever the live lookup fails so
// conversion always produces a result.
var fallbackRates = map[string]float64{
	CurrencyUSD: 1.0,
	CurrencyINR: 83.25,
	CurrencyAED: 3.67,
}

// liveRateBaseURL is the exchange-rate API endpoint; tests point it at a
// stub or an unreachable address to force the fallback table.
var liveRateBaseURL = "https://open.er-api.com/v6/latest"

var rateClient = &http.Client{Timeout: 5 * time.Second}

// SetLiveRateBaseURL overrides the exchange-rate endpoint and returns the
// previous value. Tests use it to stub the live lookup or force the
// fallback table.
func SetLiveRateBaseURL(u string) string {
	prev := liveRateBaseURL
	liveRateBaseURL = u
	return prev
}

// SupportedCurrency reports whether code is one of the three currencies
func SupportedCurrency(code string) bool {
	_, ok := fallbackRates[strings.ToUpper(code)]
	return ok
}

// Round2 rounds to two decimal places
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// fetchLiveRate returns the live from→to rate or an error. Any failure is
// absorbed by the caller's fallback.
func fetchLiveRate(from, to string) (float64, error) {
	resp, err := rateClient.Get(fmt.Sprintf("%s/%s", liveRateBaseURL, from))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate lookup returned status %d", resp.StatusCode)
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, err
	}

	rate, ok := payload.Rates[to]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("rate for %s missing in lookup response", to)
	}
	return rate, nil
}

// Convert converts amount between two supported currencies at full
// precision, so chained conversions round-trip. Callers round for storage
// and display. A live rate is preferred; on any failure the static table is
// used, so the call never fails for supported pairs.
func Convert(amount float64, from, to string) float64 {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	if from == to {
		return amount
	}

	if rate, err := fetchLiveRate(from, to); err == nil {
		return amount * rate
	} else {
		LogDebug("Live rate lookup %s->%s failed, using fallback table: %v", from, to, err)
	}

	// Cross rates go through USD
	fromRate, ok := fallbackRates[from]
	if !ok {
		fromRate = 1.0
	}
	toRate, ok := fallbackRates[to]
	if !ok {
		toRate = 1.0
	}
	return amount / fromRate * toRate
}

// OrderAmounts holds the three stored amounts for an order
type OrderAmounts struct {
	USD float64
	INR float64
	AED float64
}

// ComputeOrderAmounts expands the transaction total into all three stored
// currencies, each rounded to two decimals. The amount matching currency is
// authoritative; the other two are conversions computed now and may drift
// against later display-time conversions.
func ComputeOrderAmounts(total float64, currency string) OrderAmounts {
	currency = strings.ToUpper(currency)
	return OrderAmounts{
		USD: Round2(Convert(total, currency, CurrencyUSD)),
		INR: Round2(Convert(total, currency, CurrencyINR)),
		AED: Round2(Convert(total, currency, CurrencyAED)),
	}
}
