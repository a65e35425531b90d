package scanner

import (
	"fmt"

	"studiodrop/internal/services"
)

// PathNotFoundError reports an input root that does not exist or is not a
// directory. It matches services.ErrPathNotFound with errors.Is.
type PathNotFoundError struct {
	Path string
	Err  error
}

func (e *PathNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("input root %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("input root %s is not a directory", e.Path)
}

func (e *PathNotFoundError) Unwrap() []error {
	if e.Err == nil {
		return []error{services.ErrPathNotFound}
	}
	return []error{services.ErrPathNotFound, e.Err}
}
