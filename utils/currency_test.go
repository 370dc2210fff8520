package utils

import (
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// forceFallbackRates points the live lookup at an unreachable address so
// every conversion uses the static table.
func forceFallbackRates(t *testing.T) {
	t.Helper()
	prev := SetLiveRateBaseURL("http://127.0.0.1:1")
	t.Cleanup(func() { SetLiveRateBaseURL(prev) })
}

func TestConvertIdentity(t *testing.T) {
	forceFallbackRates(t)

	for _, currency := range []string{CurrencyUSD, CurrencyINR, CurrencyAED} {
		assert.Equal(t, 123.456, Convert(123.456, currency, currency),
			"identity conversion must return the amount unchanged for %s", currency)
	}
}

func TestConvertRoundTrip(t *testing.T) {
	forceFallbackRates(t)

	pairs := [][2]string{
		{CurrencyUSD, CurrencyINR},
		{CurrencyUSD, CurrencyAED},
		{CurrencyINR, CurrencyAED},
		{CurrencyINR, CurrencyUSD},
		{CurrencyAED, CurrencyUSD},
		{CurrencyAED, CurrencyINR},
	}

	for _, amount := range []float64{1.0, 4.0, 200.0, 999.99} {
		for _, pair := range pairs {
			converted := Convert(amount, pair[0], pair[1])
			back := Convert(converted, pair[1], pair[0])
			assert.InDelta(t, amount, back, 0.01,
				"round trip %s->%s->%s for %.2f", pair[0], pair[1], pair[0], amount)
		}
	}
}

func TestConvertFallbackRates(t *testing.T) {
	forceFallbackRates(t)

	assert.Equal(t, 166.5, Convert(2.0, CurrencyUSD, CurrencyINR))
	assert.InDelta(t, 7.34, Convert(2.0, CurrencyUSD, CurrencyAED), 0.0001)
	assert.Equal(t, 200.0, Convert(16650.0, CurrencyINR, CurrencyUSD))
}

func TestConvertKeepsPrecisionForChaining(t *testing.T) {
	forceFallbackRates(t)

	// Small INR amounts produce sub-cent AED values; the conversion must not
	// round them away or the trip back inflates the amount
	aed := Convert(4.0, CurrencyINR, CurrencyAED)
	assert.InDelta(t, 0.17634, aed, 0.0001)
	assert.InDelta(t, 4.0, Convert(aed, CurrencyAED, CurrencyINR), 1e-9)

	usd := Convert(200.0, CurrencyINR, CurrencyUSD)
	assert.InDelta(t, 200.0, Convert(usd, CurrencyUSD, CurrencyINR), 1e-9)
}

func TestConvertPrefersLiveRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"rates":{"INR":80.0,"AED":3.5,"USD":1.0}}`)
	}))
	defer server.Close()

	prev := SetLiveRateBaseURL(server.URL)
	defer SetLiveRateBaseURL(prev)

	assert.Equal(t, 160.0, Convert(2.0, CurrencyUSD, CurrencyINR))
}

func TestConvertLiveFailureFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	prev := SetLiveRateBaseURL(server.URL)
	defer SetLiveRateBaseURL(prev)

	assert.Equal(t, 83.25, Convert(1.0, CurrencyUSD, CurrencyINR))
}

func TestComputeOrderAmounts(t *testing.T) {
	forceFallbackRates(t)

	amounts := ComputeOrderAmounts(16650.0, CurrencyINR)
	assert.Equal(t, 16650.0, amounts.INR)
	assert.Equal(t, 200.0, amounts.USD)
	assert.InDelta(t, 200.0*3.67, amounts.AED, 0.01)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.2345))
	assert.Equal(t, 166.5, Round2(2.0*83.25))
	assert.True(t, math.Abs(Round2(200.0)-200.0) < 1e-9)
}
