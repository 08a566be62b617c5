package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
)

func writeJSON(c *echo.Context, status int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Blob(status, echo.MIMEApplicationJSON, b)
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, "", "")
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg, "", "")
}

func writeServerError(c *echo.Context, err error) error {
	return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "", "")
}

func writeError(c *echo.Context, status int, errType, msg, param, code string) error {
	return writeJSON(c, status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
			Code:    code,
			Param:   param,
		},
	})
}

// readBody reads at most limit bytes of the request body. An empty body or
// one over the limit is an invalid request.
func readBody(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, newInvalidRequest("request body is empty")
	}
	if int64(len(b)) > limit {
		return nil, newInvalidRequest(fmt.Sprintf("request body exceeds %d bytes", limit))
	}
	return b, nil
}

func newContainerID() string {
	return "tmf_" + uuid.NewString()
}
