package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/labstack/echo/v4"
)

// TestContext bundles an echo context with its request and recorder.
type TestContext struct {
	Echo     *echo.Echo
	Context  echo.Context
	Request  *http.Request
	Recorder *httptest.ResponseRecorder
}

// NewTestContext creates a context for calling a handler directly.
func NewTestContext(method, path string, body io.Reader) *TestContext {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()

	return &TestContext{
		Echo:     e,
		Context:  e.NewContext(req, rec),
		Request:  req,
		Recorder: rec,
	}
}

// NewTestContextWithJSON creates a context whose request body is body encoded as JSON.
func NewTestContextWithJSON(method, path string, body interface{}) *TestContext {
	data, _ := json.Marshal(body)
	tc := NewTestContext(method, path, bytes.NewReader(data))
	tc.Request.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return tc
}

// SetCookie adds a cookie to the request.
func (tc *TestContext) SetCookie(name, value string) {
	tc.Request.AddCookie(&http.Cookie{Name: name, Value: value})
}

// GetResponseBody decodes the JSON response body.
func (tc *TestContext) GetResponseBody() map[string]interface{} {
	var body map[string]interface{}
	_ = json.Unmarshal(tc.Recorder.Body.Bytes(), &body)
	return body
}

// GetResponseCode returns the response status code.
func (tc *TestContext) GetResponseCode() int {
	return tc.Recorder.Code
}

// GetResponseCookie returns the named cookie set on the response, or nil.
func (tc *TestContext) GetResponseCookie(name string) *http.Cookie {
	for _, cookie := range tc.Recorder.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

// WaitFor polls condition every interval until it holds or timeout passes.
func WaitFor(timeout, interval time.Duration, condition func() bool) error {
	deadline := time.Now().Add(timeout)
	for {
		if condition() {
			return nil
		}
		if time.Now().After(deadline) {
			return &TimeoutError{Timeout: timeout}
		}
		time.Sleep(interval)
	}
}

// TimeoutError is returned by WaitFor.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return "condition not met within " + e.Timeout.String()
}
