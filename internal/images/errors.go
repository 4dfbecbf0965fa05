package images

import "errors"

var (
	// ErrUnresolvable is returned for an image source that cannot be turned
	// into an absolute URL.
	ErrUnresolvable = errors.New("unable to resolve image source")

	// ErrNotImage is returned when an image is served with a non-image
	// content type.
	ErrNotImage = errors.New("response is not an image")
)
