package forgesdk

import (
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

const (
	methodGet    = http.MethodGet
	methodPost   = http.MethodPost
	methodPatch  = http.MethodPatch
	methodDelete = http.MethodDelete
)

// send executes req and decodes a successful JSON body into a new T.
func send[T any](req *resty.Request, method, path string) (*T, error) {
	resp, err := req.SetResult(new(T)).Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.IsError() {
		return nil, handleError(resp)
	}

	return resp.Result().(*T), nil
}

// sendNoContent executes req and discards any successful body.
func sendNoContent(req *resty.Request, method, path string) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	if resp.IsError() {
		return handleError(resp)
	}
	return nil
}
