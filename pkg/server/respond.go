package server

import (
	"errors"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
	"github.com/vocaltales/storyteller/pkg/pipeline"
	"github.com/vocaltales/storyteller/pkg/utils"
)

type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, errorResponse{Error: message})
}

// stageError reports a failed turn. Failures of a remote stage are a bad
// gateway, anything else is ours.
func stageError(w http.ResponseWriter, r *http.Request, err error) {
	stage := pipeline.StageOf(err)
	status := http.StatusInternalServerError
	if stage != pipeline.StageUnknown {
		status = http.StatusBadGateway
	}
	if ctxErr := r.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		status = http.StatusGatewayTimeout
	}

	log.Error().
		Err(err).
		Str("stage", string(stage)).
		Bool("remote_unavailable", utils.IsServerError(err)).
		Msg("Turn failed")

	JSON(w, status, errorResponse{Error: err.Error(), Stage: string(stage)})
}
