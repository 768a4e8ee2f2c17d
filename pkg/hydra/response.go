package hydra

import (
	"bytes"
	"errors"
	"net/http"
)

// ErrResponseEnded is returned when writing to a response that was ended.
var ErrResponseEnded = errors.New("response already ended")

// Response is a buffered response. It implements http.ResponseWriter so
// standard library handlers can write into it; the host flushes it to the
// client once dispatch returns.
type Response struct {
	StatusCode int

	header http.Header
	body   bytes.Buffer
	ended  bool
}

// NewResponse returns an empty 200 response.
func NewResponse() *Response {
	return &Response{
		StatusCode: http.StatusOK,
		header:     make(http.Header),
	}
}

// Header returns the response headers.
func (r *Response) Header() http.Header {
	return r.header
}

// WriteHeader sets the status code. It has no effect after End.
func (r *Response) WriteHeader(statusCode int) {
	if r.ended {
		return
	}
	r.StatusCode = statusCode
}

// Write appends to the body.
func (r *Response) Write(p []byte) (int, error) {
	if r.ended {
		return 0, ErrResponseEnded
	}
	return r.body.Write(p)
}

// Flush is a no-op; the response is delivered when dispatch returns.
func (r *Response) Flush() {}

// Send writes body and ends the response.
func (r *Response) Send(body []byte) error {
	if _, err := r.Write(body); err != nil {
		return err
	}
	r.End()
	return nil
}

// End marks the response as complete. Later writes fail.
func (r *Response) End() {
	r.ended = true
}

// Ended reports whether End was called.
func (r *Response) Ended() bool {
	return r.ended
}

// Body returns the bytes written so far.
func (r *Response) Body() []byte {
	return r.body.Bytes()
}

// SetBody replaces the body, even after End.
func (r *Response) SetBody(body []byte) {
	r.body.Reset()
	r.body.Write(body)
}

// CopyTo copies status, headers, body and ended state into dst.
func (r *Response) CopyTo(dst *Response) {
	dst.StatusCode = r.StatusCode
	dst.header = r.header.Clone()
	dst.SetBody(r.Body())
	dst.ended = r.ended
}

// Deliver copies the buffered response to w.
func (r *Response) Deliver(w http.ResponseWriter) error {
	dst := w.Header()
	for k, v := range r.header {
		dst[k] = append([]string(nil), v...)
	}
	status := r.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, err := w.Write(r.body.Bytes())
	return err
}
