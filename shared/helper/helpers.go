package helper

import (
	"errors"
	"fmt"
)

var ErrUnexpectedType = errors.New("unexpected type")

// TypedValueOf asserts raw to T.
func TypedValueOf[T any](raw any) (T, error) {
	val, ok := raw.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: want %T, got %T", ErrUnexpectedType, zero, raw)
	}
	return val, nil
}

// GetTypedValueOf asserts the result of a getter function to T.
func GetTypedValueOf[T any](getFn func() (any, error)) (T, error) {
	res, err := getFn()
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to get value: %w", err)
	}
	return TypedValueOf[T](res)
}

// MustGetTypedValue is the panic-on-failure variant of GetTypedValueOf.
func MustGetTypedValue[T any](getFn func() (any, error)) T {
	res, err := GetTypedValueOf[T](getFn)
	if err != nil {
		panic(err)
	}
	return res
}
