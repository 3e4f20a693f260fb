package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/tasklist/internal/services"
)

var (
	errInvalidRequestBody      = errors.New("invalid request body")
	errMandatoryCookieNotFound = errors.New("mandatory cookie not found")
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	body := gin.H{"error": err.Message}
	if err.Field != "" {
		body["field"] = err.Field
	}
	c.AbortWithStatusJSON(err.Code, body)
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newConflictError(message string) apiError {
	return newAPIError(http.StatusConflict, message)
}

// newServiceError maps a service error onto a response. Unauthorized
// errors other than bad credentials share one message so the response
// does not tell which check failed.
func newServiceError(err error) apiError {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		apiErr := newBadRequestError(validationErr.Message)
		apiErr.Field = validationErr.Field
		return apiErr
	case errors.Is(err, services.ErrInvalidCredentials):
		return newUnauthorizedError(services.ErrInvalidCredentials.Error())
	case errors.Is(err, services.ErrUnauthorized):
		return newUnauthorizedError(services.ErrUnauthorized.Error())
	case errors.Is(err, services.ErrConflict):
		return newConflictError(err.Error())
	case errors.Is(err, services.ErrNotFound):
		return newNotFoundError(err.Error())
	default:
		return newStatusTextError(http.StatusInternalServerError)
	}
}
