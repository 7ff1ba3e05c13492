package runtime

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different types of runtime errors
type ErrorType string

const (
	ErrorTypeTemplate  ErrorType = "template_error"
	ErrorTypeUndefined ErrorType = "undefined_error"
	ErrorTypeFilter    ErrorType = "filter_error"
	ErrorTypeBlock     ErrorType = "block_error"
	ErrorTypeComposite ErrorType = "composite_error"
	ErrorTypeRange     ErrorType = "range_error"
	ErrorTypeConfig    ErrorType = "config_error"
)

// Error represents a runtime error raised while rendering a template
type Error struct {
	Type     ErrorType
	Message  string
	Template string
	Cause    error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Template != "" {
		return fmt.Sprintf("%s in %s: %s", e.Type, e.Template, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new runtime error
func NewError(errorType ErrorType, message string) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
	}
}

// NewErrorWithCause creates a new runtime error with an underlying cause
func NewErrorWithCause(errorType ErrorType, message string, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// WrapError attaches the template name to err. Errors that are not runtime
// errors are wrapped as template errors.
func WrapError(err error, templateName string) error {
	if err == nil {
		return nil
	}

	var base *Error
	switch e := err.(type) {
	case *Error:
		base = e
	case *TemplateNotFoundError:
		base = e.base
	case *BlockNotFoundError:
		base = e.base
	case *FilterError:
		base = e.base
	case *UndefinedError:
		base = e.base
	case *CompositeValueError:
		base = e.base
	default:
		return &Error{
			Type:     ErrorTypeTemplate,
			Message:  err.Error(),
			Template: templateName,
			Cause:    err,
		}
	}

	if base != nil && base.Template == "" {
		base.Template = templateName
	}
	return err
}

// UndefinedError is raised when a strict undefined value is rendered
type UndefinedError struct {
	base *Error
	Name string
}

// NewUndefinedError creates a new undefined variable error
func NewUndefinedError(name string) *UndefinedError {
	return &UndefinedError{
		base: NewError(ErrorTypeUndefined, fmt.Sprintf("'%s' is undefined", name)),
		Name: name,
	}
}

func (e *UndefinedError) Error() string { return e.base.Error() }

// TemplateNotFoundError represents an error when a template cannot be located.
type TemplateNotFoundError struct {
	base *Error
	Name string
}

// NewTemplateNotFound creates a TemplateNotFoundError with an optional cause.
func NewTemplateNotFound(name string, cause error) *TemplateNotFoundError {
	return &TemplateNotFoundError{
		base: NewErrorWithCause(ErrorTypeTemplate, fmt.Sprintf("template %s not found", name), cause),
		Name: name,
	}
}

// Error returns the message for TemplateNotFoundError.
func (e *TemplateNotFoundError) Error() string {
	if e == nil {
		return "template not found"
	}
	return e.base.Error()
}

// Unwrap returns the underlying cause for TemplateNotFoundError.
func (e *TemplateNotFoundError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.base.Cause
}

// BlockNotFoundError is raised when a block name or super level has no executor.
type BlockNotFoundError struct {
	base  *Error
	Name  string
	Level int
}

// NewBlockNotFound creates a BlockNotFoundError.
func NewBlockNotFound(name string, level int, available int) *BlockNotFoundError {
	message := fmt.Sprintf("block '%s' is not defined", name)
	if available > 0 {
		message = fmt.Sprintf("block '%s' has %d implementation(s), level %d is out of range", name, available, level)
	}
	return &BlockNotFoundError{
		base:  NewError(ErrorTypeBlock, message),
		Name:  name,
		Level: level,
	}
}

func (e *BlockNotFoundError) Error() string { return e.base.Error() }

// FilterError represents a filter-related error
type FilterError struct {
	base       *Error
	FilterName string
}

// NewFilterError creates a new filter error
func NewFilterError(filterName, message string, cause error) *FilterError {
	return &FilterError{
		base:       NewErrorWithCause(ErrorTypeFilter, fmt.Sprintf("filter '%s': %s", filterName, message), cause),
		FilterName: filterName,
	}
}

func (e *FilterError) Error() string { return e.base.Error() }

// Unwrap returns the error raised by the filter, if any.
func (e *FilterError) Unwrap() error { return e.base.Cause }

// CompositeValueError is raised when a list or mapping reaches output without
// being rendered through a block or template first.
type CompositeValueError struct {
	base  *Error
	Value interface{}
}

// NewCompositeValueError creates a CompositeValueError for value.
func NewCompositeValueError(value interface{}) *CompositeValueError {
	return &CompositeValueError{
		base:  NewError(ErrorTypeComposite, fmt.Sprintf("cannot render a composite value directly, tried to print %T (%s)", value, describeComposite(value))),
		Value: value,
	}
}

func (e *CompositeValueError) Error() string { return e.base.Error() }

func describeComposite(value interface{}) string {
	s := fmt.Sprintf("%v", value)
	if len(s) > 60 {
		s = s[:57] + "..."
	}
	return strings.ReplaceAll(s, "\n", " ")
}

// IsUndefinedError checks if an error is an undefined variable error
func IsUndefinedError(err error) bool {
	var target *UndefinedError
	return errors.As(err, &target)
}

// IsTemplateNotFound checks if an error is a missing template error
func IsTemplateNotFound(err error) bool {
	var target *TemplateNotFoundError
	return errors.As(err, &target)
}

// IsBlockNotFound checks if an error is a missing block error
func IsBlockNotFound(err error) bool {
	var target *BlockNotFoundError
	return errors.As(err, &target)
}

// IsFilterError checks if an error is a filter error
func IsFilterError(err error) bool {
	var target *FilterError
	return errors.As(err, &target)
}

// IsCompositeValueError checks if an error was caused by printing a composite value
func IsCompositeValueError(err error) bool {
	var target *CompositeValueError
	return errors.As(err, &target)
}
