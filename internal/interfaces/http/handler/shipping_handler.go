// Package handler contains the HTTP handlers of the shipping API.
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/hapkiduki/shipping-go/internal/application/dto"
	"github.com/hapkiduki/shipping-go/internal/application/port"
	"github.com/hapkiduki/shipping-go/internal/application/usecase"
	"github.com/hapkiduki/shipping-go/internal/domain/entity"
	"github.com/hapkiduki/shipping-go/internal/domain/repository"
	"github.com/hapkiduki/shipping-go/internal/domain/shipping"
	"github.com/hapkiduki/shipping-go/internal/interfaces/http/middleware"
)

// ShippingUsecase is what the handler needs from the application layer.
type ShippingUsecase interface {
	Quote(ctx context.Context, cmd usecase.QuoteCommand) (usecase.QuoteResult, error)
	Options(ctx context.Context, cmd usecase.OptionsCommand) ([]usecase.OptionResult, error)
	EstimateDate(ctx context.Context, days, locale string) (string, string)
	RateTable(ctx context.Context) (*shipping.RateTable, error)
}

// ShippingHandler serves the /shipping endpoints.
type ShippingHandler struct {
	svc    ShippingUsecase
	logger port.Logger
}

// NewShippingHandler creates a ShippingHandler.
func NewShippingHandler(svc ShippingUsecase, logger port.Logger) *ShippingHandler {
	return &ShippingHandler{svc: svc, logger: logger}
}

// Routes mounts the shipping endpoints on r.
func (h *ShippingHandler) Routes(r chi.Router) {
	r.Post("/quote", h.Quote)
	r.Post("/options", h.Options)
	r.Get("/delivery-date", h.DeliveryDate)
	r.Get("/zones", h.Zones)
}

// Quote handles POST /shipping/quote.
func (h *ShippingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req dto.QuoteRequest
	if !h.decode(w, r, &req) {
		return
	}

	locale := r.URL.Query().Get("locale")
	if locale == "" {
		locale = r.Header.Get("Accept-Language")
	}

	result, err := h.svc.Quote(r.Context(), usecase.QuoteCommand{
		Cart:    dto.ToCart(req.Items),
		Address: dto.ToAddress(req.Address),
		Speed:   req.Speed,
		Locale:  locale,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	resp := dto.NewQuoteResponse(result.Calculation, result.EstimatedDelivery)
	resp.QuoteID = result.ID
	writeOK(w, r, resp)
}

// Options handles POST /shipping/options.
func (h *ShippingHandler) Options(w http.ResponseWriter, r *http.Request) {
	var req dto.OptionsRequest
	if !h.decode(w, r, &req) {
		return
	}

	locale := req.Locale
	if locale == "" {
		locale = r.Header.Get("Accept-Language")
	}

	results, err := h.svc.Options(r.Context(), usecase.OptionsCommand{
		Cart:    dto.ToCart(req.Items),
		Address: dto.ToAddress(req.Address),
		Locale:  locale,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	options := make([]dto.DeliveryOptionResponse, 0, len(results))
	for _, res := range results {
		options = append(options, dto.DeliveryOptionResponse{
			ID:                string(res.Option.ID),
			Name:              res.Option.Name,
			Icon:              res.Option.Icon,
			Cost:              res.Option.Cost.ToFloat(),
			DeliveryDays:      res.Option.DeliveryDays,
			Description:       res.Option.Description,
			EstimatedDelivery: res.EstimatedDelivery,
		})
	}
	writeOK(w, r, options)
}

// DeliveryDate handles GET /shipping/delivery-date?days=3-4&locale=en-US.
func (h *ShippingHandler) DeliveryDate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("days") {
		middleware.WriteError(w, r, http.StatusBadRequest, "INVALID_REQUEST", "query parameter 'days' is required")
		return
	}
	locale := q.Get("locale")
	if locale == "" {
		locale = r.Header.Get("Accept-Language")
	}

	days := q.Get("days")
	estimate, used := h.svc.EstimateDate(r.Context(), days, locale)
	writeOK(w, r, dto.DeliveryDateResponse{Days: days, Locale: used, Estimate: estimate})
}

// Zones handles GET /shipping/zones.
func (h *ShippingHandler) Zones(w http.ResponseWriter, r *http.Request) {
	table, err := h.svc.RateTable(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeOK(w, r, dto.NewRateTableResponse(table))
}

func (h *ShippingHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := render.DecodeJSON(r.Body, v)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		resp := dto.NewErrorResponse("PAYLOAD_TOO_LARGE", "request body is too large")
		resp.Error.WithDetail("limit_bytes", tooLarge.Limit)
		middleware.Render(w, r, http.StatusRequestEntityTooLarge, resp)
	case errors.Is(err, io.EOF):
		middleware.WriteError(w, r, http.StatusBadRequest, "INVALID_JSON", "request body is empty")
	default:
		middleware.WriteError(w, r, http.StatusBadRequest, "INVALID_JSON", "request body is not valid JSON")
	}
	return false
}

func (h *ShippingHandler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var lineErr *entity.InvalidCartLineError
	switch {
	case errors.As(err, &lineErr):
		middleware.Render(w, r, http.StatusUnprocessableEntity, dto.NewValidationErrorResponse(dto.ValidationError{
			Field:   fmt.Sprintf("items[%d].%s", lineErr.Index, lineErr.Field),
			Message: lineErr.Reason,
			Value:   lineErr.Value,
		}))
	case repository.IsUnavailableError(err):
		middleware.WriteError(w, r, http.StatusServiceUnavailable, "RATES_UNAVAILABLE", "shipping rates are not available")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		middleware.WriteError(w, r, http.StatusGatewayTimeout, "TIMEOUT", "Request timed out")
	default:
		h.logger.WithContext(r.Context()).Error("Shipping request failed", "error", err)
		middleware.WriteError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
	}
}

func writeOK[T any](w http.ResponseWriter, r *http.Request, data T) {
	middleware.Render(w, r, http.StatusOK, dto.NewSuccessResponse(data))
}
