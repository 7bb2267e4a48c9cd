package adapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/MKhiriev/go-pass-sphere/models"
	"github.com/go-resty/resty/v2"
)

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := replyMessage(resp.Body())

	switch resp.StatusCode() {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, body)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, body)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, body)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", ErrServerInternal, body)
	default:
		if body == "" {
			body = http.StatusText(resp.StatusCode())
		}
		return fmt.Errorf("%w: http %d: %s", ErrRemote, resp.StatusCode(), body)
	}
}

// replyMessage returns the err branch of a variant body, or the trimmed raw
// body when it is not one.
func replyMessage(raw []byte) string {
	var reply models.Result[json.RawMessage]
	if err := json.Unmarshal(raw, &reply); err == nil && reply.Err != nil {
		return *reply.Err
	}
	return strings.TrimSpace(string(raw))
}

// decodeResult maps the HTTP status, then unwraps {"ok": T}. The err branch
// becomes ErrRemote carrying the remote message.
func decodeResult[T any](resp *resty.Response) (T, error) {
	var zero T
	if err := mapHTTPError(resp); err != nil {
		return zero, err
	}

	var reply models.Result[T]
	if err := json.Unmarshal(resp.Body(), &reply); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if reply.Err != nil {
		return zero, fmt.Errorf("%w: %s", ErrRemote, *reply.Err)
	}
	if reply.Ok == nil {
		return zero, fmt.Errorf("%w: missing ok value", ErrMalformedReply)
	}
	return *reply.Ok, nil
}

// decodeUnit is decodeResult for replies whose ok value is null.
func decodeUnit(resp *resty.Response) error {
	if err := mapHTTPError(resp); err != nil {
		return err
	}

	var reply models.Result[json.RawMessage]
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &reply); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedReply, err)
		}
	}
	if reply.Err != nil {
		return fmt.Errorf("%w: %s", ErrRemote, *reply.Err)
	}
	return nil
}
