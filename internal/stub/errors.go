package stub

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// errorBody mirrors the {"detail": ...} error envelope clients expect.
// Detail is a string for handled errors and a list for validation errors.
type errorBody struct {
	Detail any `json:"detail"`
}

// fieldError is one entry of a validation error list
type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func detailError(status int, detail string) *echo.HTTPError {
	return echo.NewHTTPError(status, detail)
}

func missingField(name string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnprocessableEntity, []fieldError{{
		Loc:  []string{"body", name},
		Msg:  "field required",
		Type: "value_error.missing",
	}})
}

// errorHandler renders every error in the detail envelope.
// Usage: e.HTTPErrorHandler = errorHandler
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	var detail any = http.StatusText(status)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		detail = he.Message
		if status >= http.StatusInternalServerError && he.Internal != nil {
			c.Logger().Error(he.Internal)
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, errorBody{Detail: detail})
}
