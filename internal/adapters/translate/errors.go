package translate

import (
	"errors"
	"fmt"
)

var ErrEmptyResult = errors.New("translate: empty result")

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("translate api status %d: %s", e.Status, e.Body)
}
