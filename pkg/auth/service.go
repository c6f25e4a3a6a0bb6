package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// IsServiceCredential reports whether the bearer token on a request is
// the deployment signing key itself. This is the operational override
// used by infrastructure callers (e.g. the manual sweep trigger); it is
// deliberately a separate path from user-token verification so the two
// credential formats can never be confused.
func IsServiceCredential(r *http.Request) bool {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return false
	}
	token := strings.TrimPrefix(h, "Bearer ")
	return subtle.ConstantTimeCompare([]byte(token), secret()) == 1
}
