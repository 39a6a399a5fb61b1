package validators

import (
	"fmt"
	"net/http"
	"strconv"

	pkgerrors "github.com/naijagasonline/ngo-storefront/pkg/errors"
)

const maxNumericParamLen = 20

// QueryString returns the trimmed query value, cut to maxLen bytes.
func QueryString(r *http.Request, key string, maxLen int) string {
	return SanitizeString(r.URL.Query().Get(key), maxLen)
}

// ParseQueryInt reads an optional integer in [min, max]; absent means defaultVal.
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := QueryString(r, key, maxNumericParamLen)
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, queryError(key, "must be a whole number", nil)
	}
	if value < min || value > max {
		return 0, queryError(key, fmt.Sprintf("must be between %d and %d", min, max), map[string]any{"min": min, "max": max})
	}
	return value, nil
}

func queryError(key, problem string, extra map[string]any) error {
	details := map[string]any{"field": key}
	for k, v := range extra {
		details[k] = v
	}
	return pkgerrors.New(pkgerrors.CodeValidation, key+" "+problem).WithDetails(details)
}
