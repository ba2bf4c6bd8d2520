package importers

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchemaNotFound is matched by every *SchemaNotFoundError.
	ErrSchemaNotFound = errors.New("required columns not found")

	// ErrEmptyInput means the sheet had no rows, or no row survived extraction.
	ErrEmptyInput = errors.New("no valid data found")

	// ErrUnsupportedFormat is returned for file extensions no decoder handles.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// SchemaNotFoundError reports which logical columns could not be located
// within the scanned window.
type SchemaNotFoundError struct {
	Missing []string
	Scanned int
}

func (e *SchemaNotFoundError) Error() string {
	return fmt.Sprintf("could not find column(s) %s in the first %d rows; add a header row naming them",
		strings.Join(e.Missing, ", "), e.Scanned)
}

func (e *SchemaNotFoundError) Is(target error) bool {
	return target == ErrSchemaNotFound
}
