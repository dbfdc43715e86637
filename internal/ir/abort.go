package ir

import "fmt"

// AbortError reports an unrecognized configuration code met while
// emitting code. Emitters panic with it; the generation entry point
// recovers it and turns it into an ordinary error.
type AbortError struct {
	What string
	Code int
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("unrecognized %s code %d", e.What, e.Code)
}

// Abort stops code emission for an unrecognized code.
func Abort(what string, code int) {
	panic(&AbortError{What: what, Code: code})
}
