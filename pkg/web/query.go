package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// ParseIntQuery reads an optional integer query parameter, falling back to def when it is absent.
// A present but non-integer value is answered with 400 and ok=false.
// Range checks are left to the caller.
func ParseIntQuery(w http.ResponseWriter, r *http.Request, logger *slog.Logger, key string, def int) (int, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return def, true
	}
	intValue, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s: %s", key, value))
		return 0, false
	}
	return int(intValue), true
}
