package convert

import (
	"errors"
	"fmt"
)

var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEmptyFile       = errors.New("empty file")

	// ErrProcessing covers every failure after the upload was accepted.
	ErrProcessing = errors.New("failed to process document")
	ErrTimeout    = fmt.Errorf("%w: conversion timed out", ErrProcessing)
)

// IsClientError reports whether err was caused by the upload itself rather
// than by conversion.
func IsClientError(err error) bool {
	return errors.Is(err, ErrFileTooLarge) ||
		errors.Is(err, ErrUnsupportedType) ||
		errors.Is(err, ErrEmptyFile)
}
