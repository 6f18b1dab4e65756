package httpapi

import (
	"bytes"
	"log"
	"net/http"
	"time"
)

const defaultMaxLogBytes = 512

// statusRecorder captures the status code and, for failed requests, the
// first maxLogBytes of the body.
type statusRecorder struct {
	http.ResponseWriter
	statusCode   int
	maxLogBytes  int
	bytesWritten int
	logBody      bytes.Buffer
	truncated    bool
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	n, err := r.ResponseWriter.Write(p)
	r.bytesWritten += n

	if room := r.maxLogBytes - r.logBody.Len(); room > 0 {
		if len(p) > room {
			r.logBody.Write(p[:room])
			r.truncated = true
		} else {
			r.logBody.Write(p)
		}
	} else if len(p) > 0 {
		r.truncated = true
	}
	return n, err
}

func logRequests(next http.Handler, maxLogBytes int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			maxLogBytes:    maxLogBytes,
		}
		next.ServeHTTP(recorder, r)

		duration := time.Since(start).Round(time.Microsecond)
		if recorder.statusCode < http.StatusBadRequest {
			log.Printf("%s %s -> %d (%d bytes, %s)", r.Method, r.URL.RequestURI(), recorder.statusCode, recorder.bytesWritten, duration)
			return
		}

		body := bytes.TrimSpace(recorder.logBody.Bytes())
		suffix := ""
		if recorder.truncated {
			suffix = "..."
		}
		log.Printf("%s %s -> %d (%d bytes, %s): %s%s", r.Method, r.URL.RequestURI(), recorder.statusCode, recorder.bytesWritten, duration, body, suffix)
	})
}
