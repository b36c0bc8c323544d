package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	customError "github.com/Rafadaddy/Loanmanagementghr-sub001/pkg/errors"
	"github.com/Rafadaddy/Loanmanagementghr-sub001/pkg/response"
)

// newValidator builds the request validator with decimal.Decimal registered
// as a numeric type, so required/gt tags work on money fields.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// decodeJSON reads the request body into dst and runs the validator over it.
func decodeJSON(r *http.Request, v *validator.Validate, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return customError.NewValidationError("body", "invalid JSON payload")
	}
	if err := v.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return customError.NewValidationError(first.Field(), "failed on the '"+first.Tag()+"' rule")
		}
		return customError.NewValidationError("body", err.Error())
	}
	return nil
}

// pathUUID extracts and parses a UUID path variable.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, customError.NewValidationError(name, "must be a valid UUID")
	}
	return id, nil
}

// writeError maps a service error onto the HTTP response. Business errors
// carry their code and message to the client; everything else becomes an
// opaque 500 so internals never leak.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var bizErr *customError.BusinessError
	if !errors.As(err, &bizErr) {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		response.InternalServerError(w, "internal server error")
		return
	}

	switch {
	case errors.Is(err, customError.ErrValidation):
		response.BadRequest(w, bizErr.Code, bizErr.Message, bizErr.Field)
	case errors.Is(err, customError.ErrNotFound):
		response.NotFound(w, bizErr.Message)
	case errors.Is(err, customError.ErrLoanAlreadyPaid),
		errors.Is(err, customError.ErrLoanHasPayments),
		errors.Is(err, customError.ErrPartialNotConfirmed),
		errors.Is(err, customError.ErrConcurrentModification),
		errors.Is(err, customError.ErrLoanAlreadyExists):
		response.Conflict(w, bizErr.Code, bizErr.Message)
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		response.InternalServerError(w, "internal server error")
	}
}
