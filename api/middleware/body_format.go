package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/braintree-broker/api/responses"
	pkgerrors "github.com/angelmondragon/braintree-broker/pkg/errors"
	"github.com/angelmondragon/braintree-broker/pkg/logger"
)

// FormPaths reports whether a request path carries a URL-form-encoded body.
type FormPaths func(path string) bool

// PathIs matches the given paths exactly, ignoring a trailing slash.
func PathIs(paths ...string) FormPaths {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[strings.TrimSuffix(p, "/")] = struct{}{}
	}
	return func(path string) bool {
		_, ok := set[strings.TrimSuffix(path, "/")]
		return ok
	}
}

// BodyFormat picks the body strategy per path. Form paths have their body
// parsed up front so handlers read fields with PostFormValue; every other
// path is left for the handler to decode as JSON.
func BodyFormat(isForm FormPaths, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isForm == nil || !isForm(r.URL.Path) || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			if err := r.ParseForm(); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
