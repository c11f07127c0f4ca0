package gateway

import "fmt"

// The four error kinds a gateway call can produce. Callers pick them apart
// with errors.As: validation errors never reached the network, transport
// errors mean the gateway was unreachable and may be worth retrying, gateway
// errors mean the gateway itself rejected the call, and protocol errors mean
// the response body was not JSON.

// ValidationError reports invalid caller input, raised before any network
// call is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// TransportError reports a network-level failure (DNS, TLS, timeout,
// connection reset) talking to the gateway.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gateway connection error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// GatewayError reports a non-2xx response from the gateway. Explanation is
// taken from the response's error.explanation field when present.
type GatewayError struct {
	Status      int
	Explanation string
}

func (e *GatewayError) Error() string {
	explanation := e.Explanation
	if explanation == "" {
		explanation = "Unknown error"
	}
	return fmt.Sprintf("gateway error: %s (HTTP %d)", explanation, e.Status)
}

// ProtocolError reports a response body that could not be parsed as JSON.
type ProtocolError struct {
	Status int
	Err    error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("malformed gateway response (HTTP %d): %v", e.Status, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}
