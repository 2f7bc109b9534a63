package chain

import "strings"

// Capacity-failure fragments seen across public RPC providers when a
// getLogs range covers too many blocks or results.
var capacityFragments = []string{
	"query returned more than",
	"block range is too wide",
	"block range too large",
	"exceed maximum block range",
	"response size exceeded",
	"result set too large",
	"limit exceeded",
	"too many results",
}

// IsCapacityError reports whether err indicates the queried batch was too
// large for the provider, as opposed to a transient failure.
func IsCapacityError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range capacityFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
