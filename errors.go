package memoprop

import "github.com/pkg/errors"

var (
	// ErrNotWritable is returned when writing an accessor that is not
	// settable.
	ErrNotWritable = errors.New("can't set attribute")

	// ErrNotDeletable is returned when deleting through an accessor that is
	// not deletable.
	ErrNotDeletable = errors.New("can't delete attribute")

	// ErrNotPopulated is returned when deleting a cached value that was never
	// populated or has already been deleted.
	ErrNotPopulated = errors.New("attribute not set")
)

// attrError ties a sentinel to the attribute it was raised for. errors.Is
// sees the sentinel through the wrap.
func attrError(sentinel error, name string) error {
	return errors.Wrap(sentinel, name)
}
