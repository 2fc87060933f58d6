package rpc

import "strings"

// Endpoint identifies one of the two orchestrator service endpoints.
type Endpoint string

const (
	// EndpointPortal serves every regular API method.
	EndpointPortal Endpoint = "portal"
	// EndpointLivePull serves the live data methods.
	EndpointLivePull Endpoint = "livepull"

	jsonRPCVersion = "2.0"
)

var livePullMethods = map[string]struct{}{
	"liveMode/readLiveData":       {},
	"liveMode/requestLiveActions": {},
	"liveMode/clientExitLiveMode": {},
}

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int            `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
}

// CleanMethodName strips leading and trailing slashes from a remote method name.
func CleanMethodName(method string) string {
	return strings.Trim(strings.TrimSpace(method), "/")
}

// EndpointFor routes a remote method to its endpoint. The live data methods go to
// EndpointLivePull, every other method to EndpointPortal.
func EndpointFor(method string) Endpoint {
	if _, live := livePullMethods[CleanMethodName(method)]; live {
		return EndpointLivePull
	}
	return EndpointPortal
}
