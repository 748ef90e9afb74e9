package model

// Report is the body returned by GET /.
type Report struct {
	ClientIP        string       `json:"client_ip"`
	ExternalIP      string       `json:"external_ip"`
	ExternalNetwork *NetworkInfo `json:"external_network,omitempty"`
	Cache           *ProbeResult `json:"cache,omitempty"`
	Database        *ProbeResult `json:"database,omitempty"`
}

// NetworkInfo describes the autonomous system announcing an IP.
type NetworkInfo struct {
	ASN        int    `json:"asn"`
	Org        string `json:"org,omitempty"`
	Datacenter bool   `json:"datacenter"`
}

// ProbeResult is the outcome of one connectivity probe. Exactly one of
// Value and Error is set; use ProbeSuccess and ProbeFailure to build it.
type ProbeResult struct {
	Host  string `json:"host"`
	Port  string `json:"port"`
	Value *int64 `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

func ProbeSuccess(host, port string, value int64) *ProbeResult {
	return &ProbeResult{Host: host, Port: port, Value: &value}
}

func ProbeFailure(host, port string, err error) *ProbeResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &ProbeResult{Host: host, Port: port, Error: msg}
}

// OK reports whether the probe succeeded.
func (r *ProbeResult) OK() bool {
	return r != nil && r.Value != nil
}

// ErrorResponse is returned on error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
