package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// Reasons reported for a failed completion request
const (
	ReasonQuota      = "quota"
	ReasonConnection = "connection"
	ReasonAuth       = "auth"
	ReasonUnknown    = "unknown"
)

// StatusError is a non-200 answer from a provider's HTTP API
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.Code, e.Body)
}

// ClassifyError tells what kind of upstream failure err is.
// Status codes win over message text when the provider gave one.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if reason := classifyStatus(apiErr.Code); reason != ReasonUnknown {
			return reason
		}
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if reason := classifyStatus(statusErr.Code); reason != ReasonUnknown {
			return reason
		}
	}

	switch {
	case isQuotaError(err):
		return ReasonQuota
	case isAuthError(err):
		return ReasonAuth
	case isConnectionError(err):
		return ReasonConnection
	default:
		return ReasonUnknown
	}
}

func classifyStatus(code int) string {
	switch code {
	case http.StatusTooManyRequests:
		return ReasonQuota
	case http.StatusUnauthorized, http.StatusForbidden:
		return ReasonAuth
	default:
		return ReasonUnknown
	}
}

func containsAny(err error, indicators []string) bool {
	errStr := strings.ToLower(err.Error())
	for _, indicator := range indicators {
		if strings.Contains(errStr, strings.ToLower(indicator)) {
			return true
		}
	}
	return false
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return containsAny(err, []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"EOF",
	})
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	return containsAny(err, []string{
		"quota",
		"rate limit",
		"too many requests",
		"RESOURCE_EXHAUSTED",
	})
}

// isAuthError catches rejected keys; Gemini answers 400 for a malformed key
func isAuthError(err error) bool {
	return containsAny(err, []string{
		"API key not valid",
		"API_KEY_INVALID",
		"PERMISSION_DENIED",
		"UNAUTHENTICATED",
	})
}
