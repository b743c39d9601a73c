package manager

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/polyglot-ai/mocktransport/internal/domain"
)

// ErrScenarioStackBottom is returned when popping would leave the manager
// without a current scenario.
var ErrScenarioStackBottom = errors.New("scenario stack holds a single policy; nothing to pop")

// buildResponse serializes a MockResponse into a standards-shaped
// *http.Response: JSON body, default status 200, default Content-Type
// application/json.
func buildResponse(req *http.Request, resp *domain.MockResponse) (*http.Response, error) {
	body, err := json.Marshal(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("serialize mock response body: %w", err)
	}

	status := statusOf(resp)

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	for name, value := range resp.Headers {
		header.Set(name, value)
	}

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}
