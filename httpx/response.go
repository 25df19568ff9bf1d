package httpx

import (
	"bytes"
	"net/http"
)

// ResponseBuffer holds a response in memory so a handler can inspect what
// another handler produced before anything reaches the client.
type ResponseBuffer struct {
	status int
	header http.Header
	body   bytes.Buffer
}

func NewResponseBuffer() *ResponseBuffer {
	return &ResponseBuffer{header: http.Header{}}
}

// Status is the written status code, 200 when none was written.
func (b *ResponseBuffer) Status() int {
	if b.status == 0 {
		return http.StatusOK
	}
	return b.status
}

func (b *ResponseBuffer) Header() http.Header {
	return b.header
}

func (b *ResponseBuffer) Body() []byte {
	return b.body.Bytes()
}

func (b *ResponseBuffer) Write(p []byte) (int, error) {
	return b.body.Write(p)
}

func (b *ResponseBuffer) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

// Flush copies the buffered response to w.
func (b *ResponseBuffer) Flush(w http.ResponseWriter) error {
	for key, values := range b.header {
		w.Header()[key] = values
	}
	w.WriteHeader(b.Status())
	_, err := w.Write(b.body.Bytes())
	return err
}
