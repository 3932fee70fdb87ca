package mimecheck

import (
	"errors"
	"fmt"
)

// Code classifies why a check rejected its target
type Code string

const (
	// NotReadable means the target file is missing or could not be read
	NotReadable Code = "NOT_READABLE"
	// NotDetected means no detection technique yielded a type
	NotDetected Code = "NOT_DETECTED"
	// FalseType means a type was detected but it is outside the allow-list
	FalseType Code = "FALSE_TYPE"
)

// CheckError is the error returned for a rejected target.
// It carries the rejection code for programmatic handling.
type CheckError struct {
	// Code categorizes the rejection (NOT_READABLE, NOT_DETECTED, FALSE_TYPE).
	Code Code

	// Message is the human-readable error description.
	Message string
}

// Error implements the error interface
func (e *CheckError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewCheckError creates a new CheckError
func NewCheckError(code Code, message string) *CheckError {
	return &CheckError{
		Code:    code,
		Message: message,
	}
}

// IsCheckError checks if an error is a CheckError
func IsCheckError(err error) bool {
	var checkErr *CheckError
	return errors.As(err, &checkErr)
}

// IsCode checks if an error is a CheckError with the given code
func IsCode(err error, code Code) bool {
	var checkErr *CheckError
	if errors.As(err, &checkErr) {
		return checkErr.Code == code
	}
	return false
}

// ErrorCode returns the code of a CheckError, or empty string if err is not one
func ErrorCode(err error) Code {
	var checkErr *CheckError
	if errors.As(err, &checkErr) {
		return checkErr.Code
	}
	return ""
}
