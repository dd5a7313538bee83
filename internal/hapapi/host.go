package hapapi

import (
	"strings"

	"github.com/pkg/errors"
)

// DefaultHost is the public HAP cloud endpoint. It already routes the open
// API, so no "/api" suffix is added to it.
const DefaultHost = "https://api.mingdao.com"

const privateDeploymentAPIPath = "/api"

// NormalizeHost resolves the base URL for open API calls.
//
// An empty host selects DefaultHost. A private deployment host must carry an
// http:// or https:// scheme; one trailing slash is stripped and "/api" is
// appended. Surrounding whitespace is not removed.
func NormalizeHost(host string) (string, error) {
	if host == "" {
		return DefaultHost, nil
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		return "", newError(KindInvalidHost, OpValidate,
			errors.Errorf("host %q must start with http:// or https://", host))
	}
	return strings.TrimSuffix(host, "/") + privateDeploymentAPIPath, nil
}
