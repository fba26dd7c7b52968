// Package aperrors defines the operation-status taxonomy shared by the
// access-point manager, discovery agent and controller.
package aperrors

import "fmt"

// StatusCode is the outcome of a controller or manager operation.
type StatusCode int

const (
	// Succeeded indicates the operation completed as requested.
	Succeeded StatusCode = iota
	// InvalidAccessPoint means the target interface is not registered
	// or is not controllable.
	InvalidAccessPoint
	// InvalidParameter means caller-supplied input was rejected before
	// any daemon traffic was sent.
	InvalidParameter
	// OperationNotSupported means the access point's immutable
	// capabilities do not support the request.
	OperationNotSupported
	// AccessPointNotEnabled means the operation requires the access
	// point to be Enabled.
	AccessPointNotEnabled
	// InternalError means a daemon command failed, a protocol parse
	// failed, or socket I/O failed.
	InternalError
)

// String renders the status code for logs and diagnostics.
func (c StatusCode) String() string {
	switch c {
	case Succeeded:
		return "Succeeded"
	case InvalidAccessPoint:
		return "InvalidAccessPoint"
	case InvalidParameter:
		return "InvalidParameter"
	case OperationNotSupported:
		return "OperationNotSupported"
	case AccessPointNotEnabled:
		return "AccessPointNotEnabled"
	case InternalError:
		return "InternalError"
	default:
		return "Unknown"
	}
}

// OperationStatus is the uniform result of every controller operation.
// Controllers never return a Go error from their public methods; a
// failure is represented as a non-Succeeded OperationStatus so that
// callers (and the out-of-scope RPC layer) have one shape to handle.
type OperationStatus struct {
	InterfaceName string
	OperationName string
	Code          StatusCode
	Detail        string
}

// Succeeded reports whether the operation completed successfully.
func (s *OperationStatus) Succeeded() bool {
	return s != nil && s.Code == Succeeded
}

// Error implements error so an OperationStatus can be wrapped or logged
// with %w/%v without a separate conversion.
func (s *OperationStatus) Error() string {
	if s == nil {
		return "<nil operation status>"
	}
	if s.Detail == "" {
		return fmt.Sprintf("%s: %s on %q", s.Code, s.OperationName, s.InterfaceName)
	}
	return fmt.Sprintf("%s: %s on %q: %s", s.Code, s.OperationName, s.InterfaceName, s.Detail)
}

// Ok builds a Succeeded status for the given interface/operation.
func Ok(interfaceName, operation string) *OperationStatus {
	return &OperationStatus{InterfaceName: interfaceName, OperationName: operation, Code: Succeeded}
}

// Fail builds a non-Succeeded status with a formatted detail message.
func Fail(interfaceName, operation string, code StatusCode, format string, args ...interface{}) *OperationStatus {
	return &OperationStatus{
		InterfaceName: interfaceName,
		OperationName: operation,
		Code:          code,
		Detail:        fmt.Sprintf(format, args...),
	}
}
