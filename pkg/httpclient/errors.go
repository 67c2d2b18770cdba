package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/ssbags/storefront/pkg/errors"
)

// ErrorBody covers the error shapes the backend produces: FastAPI style
// {"detail": "..."} or {"detail": [{"msg": "..."}]}, and the structured
// {"error": {"code": "...", "message": "..."}} envelope.
type ErrorBody struct {
	Detail json.RawMessage `json:"detail"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Message extracts the human-readable message, or "" when none is present.
func (b ErrorBody) Message() string {
	if b.Error != nil && b.Error.Message != "" {
		return b.Error.Message
	}
	if len(b.Detail) == 0 {
		return ""
	}

	var text string
	if json.Unmarshal(b.Detail, &text) == nil {
		return text
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(b.Detail, &items) == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an AppError carrying the backend's message. When the body has no
// recognisable message, a generic "<operation> failed" message is used.
//
// The caller should only invoke this when resp.StatusCode indicates an error.
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, operation string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", operation, resp.StatusCode, err)
	}

	var body ErrorBody
	message := ""
	if json.Unmarshal(bodyBytes, &body) == nil {
		message = body.Message()
	}
	if message == "" {
		message = operation + " failed"
	}

	return StatusError(resp.StatusCode, message)
}

// StatusError maps an HTTP status and message to an AppError.
func StatusError(status int, message string) error {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		err := apperrors.InvalidInput(message)
		err.Status = status
		return err
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(message)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(message)
	case status == http.StatusNotFound:
		return &apperrors.AppError{
			Code:    "NOT_FOUND",
			Message: message,
			Status:  status,
			Err:     apperrors.ErrNotFound,
		}
	case status == http.StatusConflict:
		return apperrors.Conflict(message)
	case status == http.StatusTooManyRequests:
		return apperrors.TooManyRequests(message)
	case status == http.StatusServiceUnavailable:
		return apperrors.Unavailable(message, nil)
	case status >= 500:
		return &apperrors.AppError{
			Code:    "BACKEND_ERROR",
			Message: message,
			Status:  status,
			Err:     apperrors.ErrInternal,
		}
	default:
		return &apperrors.AppError{
			Code:    "REQUEST_FAILED",
			Message: message,
			Status:  status,
		}
	}
}
