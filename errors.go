package xmldiff

import "fmt"

// Kind categorizes the ways diffing can fail (spec.md §7). None of them
// are recoverable internally; every Kind surfaces to the caller as a
// wrapped *Error.
type Kind uint8

const (
	// UnknownError is the zero value; never returned by this package.
	UnknownError Kind = iota
	// InputShape means a tree argument passed to DiffTrees is not a
	// well-formed element/document.
	InputShape
	// UsageOrder means matching or diffing was requested before the
	// sequences to compare were set.
	UsageOrder
	// XPathAmbiguous means a formatter XPath lookup resolved to zero or
	// more than one element, indicating an edit-script/tree mismatch.
	// Always fatal.
	XPathAmbiguous
	// MalformedXML means the underlying XML parser rejected an input
	// string, file, or stream.
	MalformedXML
)

func (k Kind) String() string {
	switch k {
	case InputShape:
		return "InputShape"
	case UsageOrder:
		return "UsageOrder"
	case XPathAmbiguous:
		return "XPathAmbiguous"
	case MalformedXML:
		return "MalformedXML"
	default:
		return "UnknownError"
	}
}

// Error is the error type every failure in this package returns, wrapping
// an underlying cause with the operation that produced it and a Kind a
// caller can switch on or test with errors.Is/errors.As.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("xmldiff: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("xmldiff: %s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so callers
// can do errors.Is(err, &xmldiff.Error{Kind: xmldiff.MalformedXML}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func errf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
