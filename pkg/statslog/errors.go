package statslog

import "errors"

var (
	// ErrIncompleteRecord reports a record missing a schema field.
	ErrIncompleteRecord = errors.New("statslog: record is missing a schema field")
	// ErrUnknownField reports a record key that is not part of the schema.
	ErrUnknownField = errors.New("statslog: record has a field outside the schema")
	// ErrDelimiterInValue reports a value that would split or break a row.
	ErrDelimiterInValue = errors.New("statslog: value contains a delimiter or line break")
	// ErrUnsupportedValue reports a non-scalar value.
	ErrUnsupportedValue = errors.New("statslog: unsupported value type")
	// ErrNotInitialized reports an append to a log whose header was never written.
	ErrNotInitialized = errors.New("statslog: run log not initialized")
)
