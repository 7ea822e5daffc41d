package suiteql

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// NetworkError is returned when the request never produced an HTTP response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPStatusError is returned for any non-2xx response.
type HTTPStatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d", e.StatusCode)
	}
	if e.Body == "" {
		return fmt.Sprintf("HTTP %s", status)
	}
	return fmt.Sprintf("HTTP %s: %s", status, e.Body)
}

// Detail returns the human-readable messages from a NetSuite error
// document, or "" when the body is not one.
func (e *HTTPStatusError) Detail() string {
	var doc struct {
		Title   string `json:"title"`
		Details []struct {
			Detail string `json:"detail"`
		} `json:"o:errorDetails"`
	}
	if err := json.Unmarshal([]byte(e.Body), &doc); err != nil {
		return ""
	}
	var parts []string
	for _, d := range doc.Details {
		if d.Detail != "" {
			parts = append(parts, d.Detail)
		}
	}
	if len(parts) == 0 {
		return doc.Title
	}
	return strings.Join(parts, "; ")
}

// DecodeError is returned when a 2xx response body is not a valid result.
type DecodeError struct {
	Err  error
	Body string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("error parsing JSON response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsHTTPError reports whether err came from the HTTP exchange with the
// service (transport, status or decoding).
func IsHTTPError(err error) bool {
	var netErr *NetworkError
	var statusErr *HTTPStatusError
	var decodeErr *DecodeError
	return errors.As(err, &netErr) || errors.As(err, &statusErr) || errors.As(err, &decodeErr)
}
