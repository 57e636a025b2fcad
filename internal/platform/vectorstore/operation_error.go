package vectorstore

import "fmt"

type OperationErrorCode string

const (
	OperationErrorValidation        OperationErrorCode = "validation_failed"
	OperationErrorUnsupportedFilter OperationErrorCode = "unsupported_filter"
	OperationErrorEncodeFailed      OperationErrorCode = "encode_failed"
	OperationErrorDecodeFailed      OperationErrorCode = "decode_failed"
	OperationErrorTransportFailed   OperationErrorCode = "transport_failed"
	OperationErrorTimeout           OperationErrorCode = "timeout"
	OperationErrorQueryFailed       OperationErrorCode = "query_failed"
)

// OperationError is the typed failure every Store implementation surfaces,
// tagged with the backend that produced it.
type OperationError struct {
	Backend    string
	Code       OperationErrorCode
	Operation  string
	StatusCode int
	Message    string
	Cause      error
}

func (e *OperationError) Error() string {
	if e == nil {
		return "vector store operation failed"
	}
	if e.Message != "" {
		return fmt.Sprintf(
			"%s operation failed (op=%s code=%s status=%d): %s",
			e.Backend,
			e.Operation,
			e.Code,
			e.StatusCode,
			e.Message,
		)
	}
	if e.Cause != nil {
		return fmt.Sprintf(
			"%s operation failed (op=%s code=%s status=%d): %v",
			e.Backend,
			e.Operation,
			e.Code,
			e.StatusCode,
			e.Cause,
		)
	}
	return fmt.Sprintf(
		"%s operation failed (op=%s code=%s status=%d)",
		e.Backend,
		e.Operation,
		e.Code,
		e.StatusCode,
	)
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func OpErr(backend, op string, code OperationErrorCode, msg string, cause error) error {
	return &OperationError{
		Backend:   backend,
		Code:      code,
		Operation: op,
		Message:   msg,
		Cause:     cause,
	}
}
