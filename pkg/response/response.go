package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/lunarcms/lunar/pkg/errors"
)

// Envelope is the payload shape shared by every success and
// domain-failure response. Domain failures keep HTTP 200 and signal
// through Status=false; only transport-level authentication failures
// and unhandled errors use non-200 statuses.
type Envelope struct {
	Status     bool        `json:"status"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Permission *bool       `json:"permission,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes list metadata.
type Pagination struct {
	Page      int   `json:"page"`
	Limit     int   `json:"limit"`
	PageCount int   `json:"page_count"`
	Total     int64 `json:"total"`
}

// OK writes a success envelope with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Status: true, Data: data})
}

// OKWithMessage writes a success envelope with a message and optional data.
func OKWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Status: true, Message: message, Data: data})
}

// OKWithPagination writes a success envelope for a paginated list.
func OKWithPagination(c *gin.Context, data interface{}, p *Pagination) {
	c.JSON(http.StatusOK, Envelope{Status: true, Data: data, Pagination: p})
}

// Fail writes a domain soft failure: HTTP 200 with Status=false.
func Fail(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Envelope{Status: false, Message: message})
}

// Decision writes the outcome of a permission check. The permission
// field is always present so clients can distinguish a denial from a
// domain failure that never reached the grant lookup.
func Decision(c *gin.Context, allowed bool, message string) {
	c.JSON(http.StatusOK, Envelope{Status: allowed, Message: message, Permission: &allowed})
}

// Unauthorized writes a transport-level authentication failure.
func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, Envelope{Status: false, Message: message})
}

// ServerError writes a generic 500 response without leaking internals.
func ServerError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, Envelope{Status: false, Message: "Internal server error"})
}

// Error renders err according to its kind: domain errors become soft
// failures, authentication errors 401, everything else 500.
func Error(c *gin.Context, err error) {
	appErr := apperrors.FromError(err)
	if appErr == nil {
		ServerError(c)
		return
	}

	switch appErr.Kind {
	case apperrors.KindValidation, apperrors.KindNotFound, apperrors.KindConflict:
		Fail(c, appErr.Message)
	case apperrors.KindAuthentication:
		Unauthorized(c, appErr.Message)
	default:
		ServerError(c)
	}
}
