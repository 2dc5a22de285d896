package errutil

import "net/http"

// CoreStatus identifies an error class independent of transport.
type CoreStatus string

const (
	StatusUnknown          CoreStatus = "UNKNOWN"
	StatusBadRequest       CoreStatus = "BAD_REQUEST"
	StatusValidationFailed CoreStatus = "VALIDATION_FAILED"
	StatusUnauthorized     CoreStatus = "UNAUTHORIZED"
	StatusForbidden        CoreStatus = "FORBIDDEN"
	StatusNotFound         CoreStatus = "NOT_FOUND"
	StatusConflict         CoreStatus = "CONFLICT"
	StatusInternal         CoreStatus = "INTERNAL"
	StatusBadGateway       CoreStatus = "BAD_GATEWAY"
	StatusTimeout          CoreStatus = "TIMEOUT"
)

// HTTPStatus converts the CoreStatus to its closest HTTP status code
// equivalent.
func (s CoreStatus) HTTPStatus() int {
	switch s {
	case StatusBadRequest, StatusValidationFailed:
		return http.StatusBadRequest
	case StatusUnauthorized:
		return http.StatusUnauthorized
	case StatusForbidden:
		return http.StatusForbidden
	case StatusNotFound:
		return http.StatusNotFound
	case StatusConflict:
		return http.StatusConflict
	case StatusBadGateway:
		return http.StatusBadGateway
	case StatusTimeout:
		return http.StatusGatewayTimeout
	case StatusInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
