package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/handshakeadmin/DYOROfficial-sub002/internal/apperr"
)

const maxBody = 1 << 20

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// fail writes err's public form. Internal causes are logged, never sent.
func fail(w http.ResponseWriter, log *zap.Logger, err error) {
	status := apperr.HTTPStatus(err)
	if status >= 500 {
		log.Error("request failed", zap.Error(err))
	}
	body := errorBody{Error: apperr.PublicMessage(err)}
	if ae, ok := apperr.As(err); ok {
		body.Fields = ae.Fields
	}
	writeJSON(w, status, body)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.InvalidErr("request body is empty", nil)
		}
		return apperr.InvalidErr("invalid json", nil)
	}
	return nil
}
