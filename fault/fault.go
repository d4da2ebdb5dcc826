package fault

import (
	"errors"
	"fmt"
)

type faultCode string

const (
	UnknownCode             faultCode = "unknown"
	BadInputCode            faultCode = "bad_input"
	MalformedQueryCode      faultCode = "malformed_query"
	UnsupportedOperatorCode faultCode = "unsupported_operator"
	NonNumericComparandCode faultCode = "non_numeric_comparand"
	StoreOpenCode           faultCode = "store_open"
	StoreSearchCode         faultCode = "store_search"
)

type fault struct {
	code     faultCode
	message  string
	metadata any
	original error
}

func New(code faultCode, message string) fault {
	return fault{
		code:    code,
		message: message,
	}
}

func (f fault) WithMetadata(metadata any) fault {
	e := f
	e.metadata = metadata
	return e
}

func (f fault) WithOriginal(original error) fault {
	e := f
	e.original = original
	return e
}

func (f fault) Code() faultCode {
	return f.code
}

func (f fault) Message() string {
	return f.message
}

func (f fault) Metadata() any {
	return f.metadata
}

func (f fault) Original() error {
	return f.original
}

func (f fault) Unwrap() error {
	return f.original
}

func (f fault) Error() string {
	if f.original != nil {
		return fmt.Sprintf("%s: %v", f.message, f.original)
	}
	return f.message
}

// Code extracts the fault code from an error chain.
// Errors carrying no fault anywhere in the chain report UnknownCode.
func Code(err error) faultCode {
	var f fault
	if errors.As(err, &f) {
		return f.code
	}
	return UnknownCode
}
