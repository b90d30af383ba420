package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapkiduki/shipping-go/internal/application/dto"
	"github.com/hapkiduki/shipping-go/internal/application/port"
	"github.com/hapkiduki/shipping-go/internal/application/usecase"
	"github.com/hapkiduki/shipping-go/internal/domain/entity"
	"github.com/hapkiduki/shipping-go/internal/domain/repository"
	"github.com/hapkiduki/shipping-go/internal/domain/shipping"
	"github.com/hapkiduki/shipping-go/internal/infrastructure/persistance/memory"
	"github.com/hapkiduki/shipping-go/internal/interfaces/http/handler"
	"github.com/hapkiduki/shipping-go/internal/interfaces/http/middleware"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any)                      {}
func (nopLogger) Info(string, ...any)                       {}
func (nopLogger) Warn(string, ...any)                       {}
func (nopLogger) Error(string, ...any)                      {}
func (l nopLogger) With(...any) port.Logger                 { return l }
func (l nopLogger) WithContext(context.Context) port.Logger { return l }

type response[T any] struct {
	Success bool              `json:"success"`
	Data    T                 `json:"data"`
	Error   *dto.APIError     `json:"error"`
	Meta    *dto.ResponseMeta `json:"meta"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) response[T] {
	t.Helper()
	var resp response[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func newService(t *testing.T) *usecase.ShippingService {
	t.Helper()
	ist := time.FixedZone("IST", 5*60*60+30*60)
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, ist)
	svc, err := usecase.NewShippingService(usecase.ShippingServiceDeps{
		Rates:         memory.NewRateTableRepository(shipping.DefaultRateTable()),
		Estimator:     shipping.NewDateEstimator(func() time.Time { return now }, ist),
		Logger:        nopLogger{},
		DefaultLocale: "en-IN",
	})
	require.NoError(t, err)
	return svc
}

func newRouter(svc handler.ShippingUsecase) http.Handler {
	r := chi.NewRouter()
	r.Route("/shipping", handler.NewShippingHandler(svc, nopLogger{}).Routes)
	return r
}

func do(h http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestQuote(t *testing.T) {
	h := newRouter(newService(t))

	rec := do(h, http.MethodPost, "/shipping/quote",
		`{"items":[{"price":299,"quantity":1,"weight_grams":100}],"address":{"city":"mumbai"},"speed":"standard"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[dto.QuoteResponse](t, rec)
	require.True(t, resp.Success)
	q := resp.Data
	assert.NotEmpty(t, q.QuoteID)
	assert.Equal(t, 40.0, q.Cost)
	assert.Equal(t, "INR", q.Currency)
	require.NotNil(t, q.ZoneName)
	assert.Equal(t, "Metro Cities", *q.ZoneName)
	assert.Equal(t, 0.1, q.WeightKg)
	assert.Equal(t, "1-2", q.DeliveryDays)
	assert.Equal(t, "11/3/2025 - 12/3/2025", q.EstimatedDelivery)
	assert.Equal(t, 1000.0, q.FreeShippingThreshold)
	assert.False(t, q.IsFreeShipping)
	assert.Empty(t, q.Savings)
	assert.Equal(t, 40.0, q.Breakdown.OriginalCost)
}

func TestQuote_FreeShippingAndLocale(t *testing.T) {
	h := newRouter(newService(t))

	line := `{"price":299,"quantity":1,"weight_grams":100}`
	body := `{"items":[` + strings.Join([]string{line, line, line, line}, ",") + `],"address":{"city":"Mumbai"},"speed":"express"}`
	rec := do(h, http.MethodPost, "/shipping/quote?locale=en-US", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	q := decode[dto.QuoteResponse](t, rec).Data
	assert.True(t, q.IsFreeShipping)
	assert.Equal(t, 0.0, q.Cost)
	assert.Equal(t, 72.0, q.Breakdown.OriginalCost)
	assert.Equal(t, "₹72", q.Savings)
	assert.Equal(t, "Today", q.EstimatedDelivery)
}

func TestQuote_EmptyCart(t *testing.T) {
	h := newRouter(newService(t))

	rec := do(h, http.MethodPost, "/shipping/quote", `{"items":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	q := decode[dto.QuoteResponse](t, rec).Data
	assert.Nil(t, q.ZoneName)
	assert.Equal(t, 0.0, q.Cost)
	assert.Equal(t, "N/A", q.DeliveryDays)
	assert.Equal(t, "Not available", q.EstimatedDelivery)
	assert.Contains(t, rec.Body.String(), `"zone_name":null`)
}

func TestQuote_BadRequests(t *testing.T) {
	h := newRouter(newService(t))

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{name: "malformed json", body: `{"items":`, status: http.StatusBadRequest, code: "INVALID_JSON"},
		{name: "wrong type", body: `{"items":"nope"}`, status: http.StatusBadRequest, code: "INVALID_JSON"},
		{name: "negative price", body: `{"items":[{"price":-1,"quantity":1}]}`, status: http.StatusUnprocessableEntity, code: "VALIDATION_ERROR"},
		{name: "zero quantity", body: `{"items":[{"price":1,"quantity":1},{"price":1,"quantity":0}]}`, status: http.StatusUnprocessableEntity, code: "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, http.MethodPost, "/shipping/quote", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			resp := decode[any](t, rec)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}

	rec := do(h, http.MethodPost, "/shipping/quote", `{"items":[{"price":1,"quantity":1},{"price":1,"quantity":0}]}`)
	resp := decode[any](t, rec)
	require.Len(t, resp.Error.ValidationErrors, 1)
	assert.Equal(t, "items[1].quantity", resp.Error.ValidationErrors[0].Field)
	assert.Equal(t, "must be at least 1", resp.Error.ValidationErrors[0].Message)
	assert.Equal(t, 0.0, resp.Error.ValidationErrors[0].Value)

	rec = do(h, http.MethodPost, "/shipping/quote", `{"items":[{"price":-5,"quantity":1}]}`)
	resp = decode[any](t, rec)
	require.Len(t, resp.Error.ValidationErrors, 1)
	assert.Equal(t, "items[0].price", resp.Error.ValidationErrors[0].Field)
	assert.Equal(t, -5.0, resp.Error.ValidationErrors[0].Value)

	rec = do(h, http.MethodPost, "/shipping/quote", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "request body is empty", decode[any](t, rec).Error.Message)
}

func TestQuote_PayloadTooLarge(t *testing.T) {
	h := middleware.MaxBodySize(16)(newRouter(newService(t)))

	rec := do(h, http.MethodPost, "/shipping/quote", `{"items":[{"price":299,"quantity":1}]}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	resp := decode[any](t, rec)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", resp.Error.Code)
	assert.Equal(t, 16.0, resp.Error.Details["limit_bytes"])
}

func TestResponsesCarryMeta(t *testing.T) {
	h := middleware.RequestID(middleware.APIVersion("2.0.0")(newRouter(newService(t))))

	rec := do(h, http.MethodGet, "/shipping/zones", "", middleware.RequestIDHeader, "req-7")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[any](t, rec)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, "req-7", resp.Meta.RequestID)
	assert.Equal(t, "2.0.0", resp.Meta.Version)
	ts, err := time.Parse(time.RFC3339, resp.Meta.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}

func TestOptions(t *testing.T) {
	h := newRouter(newService(t))

	rec := do(h, http.MethodPost, "/shipping/options",
		`{"items":[{"price":100,"quantity":1,"weight_grams":2000}],"address":{"city":"Pune"}}`,
		"Accept-Language", "de-DE,de;q=0.9")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	options := decode[[]dto.DeliveryOptionResponse](t, rec).Data
	require.Len(t, options, 3)

	assert.Equal(t, "standard", options[0].ID)
	assert.Equal(t, 77.0, options[0].Cost)
	assert.Equal(t, "Delivery in 2-3 business days", options[0].Description)
	assert.Equal(t, "12.3.2025 - 13.3.2025", options[0].EstimatedDelivery)

	assert.Equal(t, "express", options[1].ID)
	assert.Equal(t, 139.0, options[1].Cost)
	assert.Equal(t, "⚡", options[1].Icon)

	assert.Equal(t, "overnight", options[2].ID)
	assert.Equal(t, 193.0, options[2].Cost)
	assert.Equal(t, "1-2", options[2].DeliveryDays)

	// A locale in the body wins over the header.
	rec = do(h, http.MethodPost, "/shipping/options",
		`{"items":[{"price":100,"quantity":1,"weight_grams":2000}],"address":{"city":"Pune"},"locale":"ja"}`,
		"Accept-Language", "de-DE")
	options = decode[[]dto.DeliveryOptionResponse](t, rec).Data
	assert.Equal(t, "2025/3/12 - 2025/3/13", options[0].EstimatedDelivery)
}

func TestDeliveryDate(t *testing.T) {
	h := newRouter(newService(t))

	rec := do(h, http.MethodGet, "/shipping/delivery-date?days=3-4&locale=en-US", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[dto.DeliveryDateResponse](t, rec).Data
	assert.Equal(t, dto.DeliveryDateResponse{Days: "3-4", Locale: "en-US", Estimate: "3/13/2025 - 3/14/2025"}, got)

	rec = do(h, http.MethodGet, "/shipping/delivery-date?days=N/A", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[dto.DeliveryDateResponse](t, rec).Data
	assert.Equal(t, "Not available", got.Estimate)
	assert.Equal(t, "en-IN", got.Locale)

	rec = do(h, http.MethodGet, "/shipping/delivery-date?days=Same%20Day", "", "Accept-Language", "en-GB")
	got = decode[dto.DeliveryDateResponse](t, rec).Data
	assert.Equal(t, "Today", got.Estimate)
	assert.Equal(t, "en-GB", got.Locale)

	rec = do(h, http.MethodGet, "/shipping/delivery-date", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decode[any](t, rec).Error.Code)
}

func TestZones(t *testing.T) {
	h := newRouter(newService(t))

	rec := do(h, http.MethodGet, "/shipping/zones", "")
	require.Equal(t, http.StatusOK, rec.Code)

	table := decode[dto.RateTableResponse](t, rec).Data
	assert.Equal(t, "INR", table.Currency)
	assert.Equal(t, 1000.0, table.FreeShippingThreshold)
	require.Len(t, table.Zones, 4)
	assert.Contains(t, table.Zones[0].Cities, "new delhi")
	assert.False(t, table.Zones[0].CatchAll)
	assert.True(t, table.Zones[3].CatchAll)
	assert.Empty(t, table.Zones[3].Cities)
	require.Len(t, table.Speeds, 3)
	assert.Equal(t, 2.5, table.Speeds[2].Multiplier)
}

type stubUsecase struct {
	err error
}

func (s stubUsecase) Quote(context.Context, usecase.QuoteCommand) (usecase.QuoteResult, error) {
	return usecase.QuoteResult{}, s.err
}

func (s stubUsecase) Options(context.Context, usecase.OptionsCommand) ([]usecase.OptionResult, error) {
	return nil, s.err
}

func (s stubUsecase) EstimateDate(context.Context, string, string) (string, string) {
	return "", ""
}

func (s stubUsecase) RateTable(context.Context) (*shipping.RateTable, error) {
	return nil, s.err
}

func TestDomainErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "invalid line", err: &entity.InvalidCartLineError{Index: 2, Field: "price", Reason: "cannot be negative"}, status: http.StatusUnprocessableEntity, code: "VALIDATION_ERROR"},
		{name: "rates unavailable", err: repository.ErrRateTableUnavailable, status: http.StatusServiceUnavailable, code: "RATES_UNAVAILABLE"},
		{name: "deadline", err: context.DeadlineExceeded, status: http.StatusGatewayTimeout, code: "TIMEOUT"},
		{name: "unexpected", err: errors.New("disk on fire"), status: http.StatusInternalServerError, code: "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newRouter(stubUsecase{err: tt.err})

			for _, rec := range []*httptest.ResponseRecorder{
				do(h, http.MethodPost, "/shipping/quote", `{"items":[]}`),
				do(h, http.MethodPost, "/shipping/options", `{"items":[]}`),
			} {
				require.Equal(t, tt.status, rec.Code)
				resp := decode[any](t, rec)
				assert.Equal(t, tt.code, resp.Error.Code)
				assert.NotContains(t, rec.Body.String(), "disk on fire")
			}
		})
	}

	rec := do(newRouter(stubUsecase{err: repository.ErrRateTableUnavailable}), http.MethodGet, "/shipping/zones", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
