// ABOUTME: Feature flag middleware making the flag manager available to handlers and the pipeline
// ABOUTME: Pipeline phases read flags from the request context

package middleware

import (
	"net/http"

	"mockups-app-api/pkg/featureflags"
)

// FeatureFlagsMiddleware stores manager in every request context
func FeatureFlagsMiddleware(manager featureflags.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(featureflags.WithManager(r.Context(), manager)))
		})
	}
}
