package forgesdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// ErrNoCredential is returned by a Session whose credential was cleared.
// No request is sent.
var ErrNoCredential = errors.New("forgesdk: no credential")

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Detail     string
}

// Error returns the detail alone so it can be shown to the user as is.
func (e *APIError) Error() string {
	return e.Detail
}

// IsUnauthorized reports a 401, i.e. the credential is missing or no longer valid.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err carries a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsUnauthorized()
}

// errorBody is FastAPI's error envelope. Detail is either a string or,
// for request validation failures, a list of validationIssue.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationIssue struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func handleError(resp *resty.Response) error {
	return &APIError{
		StatusCode: resp.StatusCode(),
		Detail:     parseDetail(resp.StatusCode(), resp.Body()),
	}
}

func parseDetail(status int, body []byte) string {
	fallback := fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status))

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return fallback
	}

	var detail string
	if err := json.Unmarshal(eb.Detail, &detail); err == nil {
		if detail == "" {
			return fallback
		}
		return detail
	}

	var issues []validationIssue
	if err := json.Unmarshal(eb.Detail, &issues); err == nil && len(issues) > 0 {
		parts := make([]string, 0, len(issues))
		for _, issue := range issues {
			if field := fieldOf(issue.Loc); field != "" {
				parts = append(parts, field+": "+issue.Msg)
			} else {
				parts = append(parts, issue.Msg)
			}
		}
		return strings.Join(parts, "; ")
	}

	return fallback
}

// fieldOf renders a FastAPI loc such as ["body", "name"] as "name".
func fieldOf(loc []any) string {
	var parts []string
	for i, p := range loc {
		s := fmt.Sprint(p)
		if i == 0 && (s == "body" || s == "query" || s == "path") {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ".")
}
