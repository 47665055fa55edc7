package chi

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/fwojciec/reelscout"
	"github.com/goccy/go-json"
)

// envelope is the body of every API response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Meta    any    `json:"meta,omitempty"`
}

// errorStatus maps application error codes to HTTP status codes.
var errorStatus = map[string]int{
	reelscout.EINVALID:      http.StatusBadRequest,
	reelscout.EUNAUTHORIZED: http.StatusUnauthorized,
	reelscout.ENOTFOUND:     http.StatusNotFound,
}

// ErrorStatus returns the HTTP status for err.
func ErrorStatus(err error) int {
	if status, ok := errorStatus[reelscout.ErrorCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error writes err as a failed envelope. Messages of server-side failures
// are logged, not returned.
func (s *Server) Error(w http.ResponseWriter, r *http.Request, err error) {
	status := ErrorStatus(err)
	message := reelscout.ErrorMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		message = "internal error"
	}
	s.writeJSON(w, status, envelope{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func (s *Server) writeData(w http.ResponseWriter, status int, data any, meta any) {
	s.writeJSON(w, status, envelope{Success: true, Data: data, Meta: meta})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.logger.Debug("write response", "err", err)
	}
}

// decode reads a JSON body into dst. An empty body leaves dst untouched.
func decode(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return reelscout.Errorf(reelscout.EINVALID, "invalid JSON body: %v", err)
	}
	return nil
}

// listParam collects a list query parameter given as name[]=a&name[]=b,
// name=a&name=b or name=a,b.
func listParam(r *http.Request, name string) []string {
	q := r.URL.Query()
	var out []string
	for _, key := range []string{name + "[]", name} {
		for _, v := range q[key] {
			for part := range strings.SplitSeq(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
		}
	}
	return out
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.Error(w, r, reelscout.Errorf(reelscout.ENOTFOUND, "route %s %s not found", r.Method, r.URL.Path))
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusMethodNotAllowed, envelope{
		Error:   http.StatusText(http.StatusMethodNotAllowed),
		Message: "method " + r.Method + " not allowed on " + r.URL.Path,
	})
}
