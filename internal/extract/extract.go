// Package extract normalizes the accepted call shapes of an outbound HTTP
// invocation into a single domain.RequestContext: a raw URL plus an optional
// init bag, a parsed *url.URL plus an optional init bag, or a full
// *http.Request.
package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/polyglot-ai/mocktransport/internal/domain"
)

// RequestInit is the optional bag of request attributes accompanying a
// URL-shaped invocation.
type RequestInit struct {
	// Method overrides the default GET.
	Method string

	// Headers accepts http.Header, [][2]string pairs, or map[string]string.
	// All three representations normalize identically.
	Headers any

	// Body is the raw request body, if any.
	Body []byte
}

// NormalizeHeaders collapses the accepted header representations into a
// single map form. A nil source yields an empty map. Multi-valued headers
// keep their first value.
func NormalizeHeaders(src any) (map[string]string, error) {
	out := make(map[string]string)
	switch h := src.(type) {
	case nil:
	case http.Header:
		for name, values := range h {
			if len(values) > 0 {
				out[http.CanonicalHeaderKey(name)] = values[0]
			}
		}
	case [][2]string:
		for _, pair := range h {
			key := http.CanonicalHeaderKey(pair[0])
			if _, seen := out[key]; !seen {
				out[key] = pair[1]
			}
		}
	case map[string]string:
		for name, value := range h {
			out[http.CanonicalHeaderKey(name)] = value
		}
	default:
		return nil, fmt.Errorf("unsupported header representation %T", src)
	}
	return out, nil
}

// FromURL builds a RequestContext from a raw URL string and an optional
// init bag. The method defaults to GET and a string body is attempted as
// JSON, falling back to the raw string on parse failure.
func FromURL(rawURL string, init *RequestInit) (*domain.RequestContext, error) {
	if init == nil {
		init = &RequestInit{}
	}

	method := init.Method
	if method == "" {
		method = http.MethodGet
	}

	headers, err := NormalizeHeaders(init.Headers)
	if err != nil {
		return nil, err
	}

	return &domain.RequestContext{
		URL:     rawURL,
		Method:  method,
		Headers: headers,
		Body:    parseBody(init.Body),
		RawBody: init.Body,
	}, nil
}

// FromURLValue builds a RequestContext from a parsed URL and an optional
// init bag.
func FromURLValue(u *url.URL, init *RequestInit) (*domain.RequestContext, error) {
	return FromURL(u.String(), init)
}

// FromRequest builds a RequestContext from a full request object. The body
// is drained and then restored so the request remains usable for
// pass-through; an absent body is not an error.
func FromRequest(r *http.Request) (*domain.RequestContext, error) {
	var raw []byte
	if r.Body != nil && r.Body != http.NoBody {
		var err error
		raw, err = io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("drain request body: %w", err)
		}
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(raw))
		// Pass-through calls may be replayed on redirects or HTTP/2
		// retries; GetBody must hand out a fresh reader each time.
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(raw)), nil
		}
	}

	headers, err := NormalizeHeaders(r.Header)
	if err != nil {
		return nil, err
	}

	return &domain.RequestContext{
		URL:     r.URL.String(),
		Method:  r.Method,
		Headers: headers,
		Body:    parseBody(raw),
		RawBody: raw,
	}, nil
}

// parseBody attempts a JSON parse of the raw bytes and falls back to the
// raw string. An empty body stays nil.
func parseBody(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return string(raw)
	}
	return parsed
}
