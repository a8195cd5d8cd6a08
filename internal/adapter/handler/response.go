package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

// newValidator reports fields by their json name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps a service error onto an HTTP status and a JSON body.
// Unknown errors are logged and reported as 500 without details.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		writeJSON(w, status, map[string]any{"error": "internal server error"})
		return
	}

	body := map[string]any{"error": err.Error()}

	var lineErr *domain.CheckoutLineError
	if errors.As(err, &lineErr) {
		body["item_id"] = lineErr.ItemID
		body["position"] = lineErr.Position
	}

	var invErr *domain.InsufficientInventoryError
	if errors.As(err, &invErr) {
		body["ticket_type_id"] = invErr.TicketTypeID
		body["requested"] = invErr.Requested
		body["remaining"] = invErr.Remaining
	}

	var soldErr *domain.SoldTicketsExistError
	if errors.As(err, &soldErr) {
		body["sold_tickets"] = soldErr.Count
	}

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}

	writeJSON(w, status, body)
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAllocationContention):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrDuplicateCartItem),
		errors.Is(err, domain.ErrSalesNotOpen),
		errors.Is(err, domain.ErrInsufficientInventory),
		errors.Is(err, domain.ErrAlreadySold),
		errors.Is(err, domain.ErrNotListed),
		errors.Is(err, domain.ErrSoldTicketsExist),
		errors.Is(err, domain.ErrTicketsExist),
		errors.Is(err, domain.ErrInvalidStateTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrCannotBuyOwnTicket):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// decodeJSON reads and validates a request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json body: %w", domain.ErrInvalidInput)
	}

	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%s: %w", validationMessage(err), domain.ErrInvalidInput)
	}

	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}

	return strings.Join(msgs, "; ")
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", r.PathValue("id"), domain.ErrInvalidInput)
	}

	return id, nil
}
