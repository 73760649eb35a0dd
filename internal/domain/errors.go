package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyStarted = errors.New("component already started")
	ErrNotStarted     = errors.New("component not started")
	ErrClosed         = errors.New("store closed")
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrShutdownBegun  = errors.New("shutdown already in progress")
)

type LifecycleError struct {
	Component string
	Op        string
	Err       error
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("lifecycle[%s] %s: %v", e.Component, e.Op, e.Err)
}

func (e *LifecycleError) Unwrap() error {
	return e.Err
}

func NewLifecycleError(component, op string, err error) *LifecycleError {
	return &LifecycleError{
		Component: component,
		Op:        op,
		Err:       err,
	}
}

type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("flagstore %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func NewStorageError(op, key string, err error) *StorageError {
	return &StorageError{
		Op:  op,
		Key: key,
		Err: err,
	}
}

type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config field %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func NewConfigError(field string, err error) *ConfigError {
	return &ConfigError{
		Field: field,
		Err:   err,
	}
}

func IsAlreadyStarted(err error) bool {
	return errors.Is(err, ErrAlreadyStarted)
}

func IsNotStarted(err error) bool {
	return errors.Is(err, ErrNotStarted)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	return errors.Is(err, ErrInvalidConfig) || errors.As(err, &configErr)
}
