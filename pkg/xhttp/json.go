package xhttp

import (
	"encoding/json"
	"net/http"

	"github.com/hostvpc/vpcctl/pkg/xerror"
	"go.uber.org/zap"
)

type errorBody struct {
	Result string `json:"result"`
	Error  string `json:"error,omitempty"`
}

func statusOf(err error) int {
	switch {
	case xerror.IsKind(err, xerror.EInvalidArgumentType):
		return http.StatusBadRequest
	case xerror.IsKind(err, xerror.EEntryNotFoundType):
		return http.StatusNotFound
	case xerror.IsKind(err, xerror.EExistsType):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON responds with v, or with the error mapped onto
// a status code and a small JSON body.
func WriteJSON(w http.ResponseWriter, v interface{}, err error) {
	w.Header().Set("Content-Type", "application/json")

	if err != nil {
		code := statusOf(err)
		body := errorBody{Result: "UNKNOWN_ERROR", Error: err.Error()}
		if typed, ok := err.(*xerror.Error); ok {
			body.Result = typed.CodeName()
		}
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(body)
		return
	}

	if encErr := json.NewEncoder(w).Encode(v); encErr != nil {
		zap.L().Error("failed to encode response", zap.Error(encErr))
	}
}
