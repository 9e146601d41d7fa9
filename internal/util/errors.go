package util

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateIdentity = errors.New("user ID already exists")
	ErrNotFound          = errors.New("not found")
	ErrInvalidCredential = errors.New("invalid password")
	ErrAlreadyEnrolled   = errors.New("already enrolled in this course")
	ErrAlreadyCompleted  = errors.New("skillsnap already completed")
	ErrAlreadyIssued     = errors.New("certificate already exists")
	ErrValidation        = errors.New("validation failed")
	ErrStorage           = errors.New("storage failure")
)

// AlreadyIssuedError carries the ID of the certificate that already exists
// for the requested user and course.
type AlreadyIssuedError struct {
	CertificateID string
}

func (e *AlreadyIssuedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAlreadyIssued, e.CertificateID)
}

func (e *AlreadyIssuedError) Is(target error) bool {
	return target == ErrAlreadyIssued
}

// NotFoundf wraps ErrNotFound with the missing entity.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// StorageErr marks an unexpected persistence failure. nil stays nil.
func StorageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
