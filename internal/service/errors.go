package service

import "fmt"

// ValidationError carries a list of per-item problems: per-key messages for
// settings batches, per-row errors or duplicates for roster imports.
type ValidationError struct {
	Message string
	Errors  interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Errors)
}
