package field

import "errors"

// Domain errors for field construction.
var (
	// ErrUnknownTheme indicates a theme token outside dark/light.
	ErrUnknownTheme = errors.New("field: unknown theme")

	// ErrInvalidViewport indicates non-positive viewport dimensions.
	ErrInvalidViewport = errors.New("field: viewport must have positive size")
)
