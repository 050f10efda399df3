package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/chemsource/sourcing/v1/sourcing"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Response is the envelope of every API response.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody describes a failed request. Filter is the store filter that
// produced a lookup error, when there was one.
type ErrorBody struct {
	Code    string           `json:"code"`
	Message string           `json:"message"`
	Filter  string           `json:"filter,omitempty"`
	Count   int              `json:"count,omitempty"`
	Stored  *sourcing.Triple `json:"stored,omitempty"`
}

// Error codes returned in ErrorBody.Code.
const (
	CodeNotFound           = "not_found"
	CodeFilterMismatch     = "filter_mismatch"
	CodeMultiMatch         = "multi_match"
	CodeDuplicateProductID = "duplicate_product_id"
	CodeMalformedData      = "malformed_stored_data"
	CodeInvalidRequest     = "invalid_request"
	CodeStoreUnavailable   = "store_unavailable"
	CodeVerificationFailed = "post_delete_verification_failed"
	CodeTimeout            = "timeout"
	CodeInternal           = "internal_error"
)

func success(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Success: true, Data: data})
}

func fail(c *gin.Context, err error) {
	status, body := translateError(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, Response{Error: &body})
}

// translateError maps a domain error to its HTTP status and error body.
func translateError(err error) (int, ErrorBody) {
	body := ErrorBody{Message: err.Error()}

	var me *sourcing.MatchError
	if errors.As(err, &me) {
		if me.Filter != nil {
			body.Filter = me.Filter.String()
		}
		body.Count = me.Count
		body.Stored = me.Stored
	}

	var verrs validator.ValidationErrors

	switch {
	case errors.Is(err, sourcing.ErrFilterMismatch):
		body.Code = CodeFilterMismatch
		return http.StatusNotFound, body
	case errors.Is(err, sourcing.ErrZeroMatch):
		body.Code = CodeNotFound
		return http.StatusNotFound, body
	case errors.Is(err, sourcing.ErrMultiMatch):
		body.Code = CodeMultiMatch
		return http.StatusConflict, body
	case errors.Is(err, sourcing.ErrDuplicateProductID):
		body.Code = CodeDuplicateProductID
		return http.StatusConflict, body
	case errors.Is(err, sourcing.ErrMalformedStoredData):
		body.Code = CodeMalformedData
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, sourcing.ErrIncompleteIdentity),
		errors.Is(err, sourcing.ErrUnscopedDestructive),
		errors.As(err, &verrs),
		errors.Is(err, errBadRequest):
		body.Code = CodeInvalidRequest
		return http.StatusBadRequest, body
	case errors.Is(err, sourcing.ErrStoreUnavailable):
		body.Code = CodeStoreUnavailable
		return http.StatusServiceUnavailable, body
	case errors.Is(err, sourcing.ErrPostDeleteVerificationFailed):
		body.Code = CodeVerificationFailed
		return http.StatusInternalServerError, body
	case errors.Is(err, context.DeadlineExceeded):
		body.Code = CodeTimeout
		return http.StatusGatewayTimeout, body
	default:
		body.Code = CodeInternal
		return http.StatusInternalServerError, body
	}
}
