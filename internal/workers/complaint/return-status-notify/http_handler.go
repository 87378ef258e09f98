package returnstatusnotify

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"return-notifier/internal/common/errors"
	apihttp "return-notifier/internal/common/http"
	"return-notifier/internal/common/logger"

	"github.com/go-chi/chi/v5/middleware"
)

// Route is the HTTP path the pipeline is exposed on.
const Route = "/v1/notifications/return-status"

// Executor runs the pipeline for a parsed event.
type Executor interface {
	Execute(ctx context.Context, input *Input) (*Output, error)
}

// NewHTTPHandler decodes the event from the request body and answers with
// the per-channel Output, or an error body carrying the error's status. Each
// run is bounded by timeout, like a job.
func NewHTTPHandler(exec Executor, timeout time.Duration, log logger.Logger) http.HandlerFunc {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		reqLog := log.WithFields(map[string]interface{}{"requestId": middleware.GetReqID(r.Context())})

		var vars map[string]interface{}
		decoder := json.NewDecoder(r.Body)
		if err := decoder.Decode(&vars); err != nil {
			reqLog.Warn("request body is not a JSON object", map[string]interface{}{"error": err})
			apihttp.WriteError(w, errors.NewInputParsingFailedError(err))
			return
		}

		input, err := ParseInput(vars)
		if err != nil {
			apihttp.WriteError(w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		output, err := exec.Execute(ctx, input)
		if err != nil {
			apihttp.WriteError(w, err)
			return
		}

		apihttp.WriteJSON(w, http.StatusOK, output)
	}
}
