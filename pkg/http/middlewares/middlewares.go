package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"github.com/webhookx-io/hookshot/pkg/errs"
	"github.com/webhookx-io/hookshot/pkg/http/response"
	"go.uber.org/zap"
)

// PanicRecovery turns a panic raised by a handler into a JSON error.
// Validation errors become 400, anything else 500.
func PanicRecovery(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if e := recover(); e != nil {
				var err error
				switch v := e.(type) {
				case error:
					err = v
				default:
					err = errors.New(fmt.Sprint(e))
				}

				var verr *errs.ValidateError
				if errors.As(err, &verr) {
					response.JSON(w, 400, response.ErrorResponse{Message: "Request Validation", Error: verr})
					return
				}

				buf := make([]byte, 2048)
				n := runtime.Stack(buf, false)
				buf = buf[:n]

				zap.S().Errorf("panic recovered: %v\n %s", err, buf)
				response.JSON(w, 500, response.ErrorResponse{Message: "internal error"})
			}
		}()

		h.ServeHTTP(w, r)
	})
}
