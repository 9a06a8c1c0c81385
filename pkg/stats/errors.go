package stats

import "errors"

var (
	// ErrMissingColumn means a required column (country or year) is absent
	// after normalization. The dataset cannot be used.
	ErrMissingColumn = errors.New("missing column")

	// ErrMalformed means the source file could not be parsed.
	ErrMalformed = errors.New("malformed dataset")

	// ErrUnsupportedFormat is returned for file extensions no loader handles.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
)
