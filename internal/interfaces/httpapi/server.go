package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/football-stats/internal/platform/logging"
)

func NewRouter(
	handler *Handler,
	logger *logging.Logger,
	corsAllowedOrigins []string,
	internalJobToken string,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerPublicRoutes(mux, handler)
	registerInternalRoutes(mux, handler, internalJobToken)

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}

// recoverPanic answers in the format of the route that panicked: plain text
// under /v1/internal/, the JSON envelope elsewhere.
func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "path", r.URL.Path)
				err := fmt.Errorf("panic: %v", rec)
				if strings.HasPrefix(r.URL.Path, "/v1/internal/") {
					writeTextError(ctx, w, err)
					return
				}
				writeError(ctx, w, err)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
