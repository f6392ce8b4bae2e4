// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package xerror

import (
	"fmt"
	"os"
	"runtime"

	"github.com/getsentry/sentry-go"
	"github.com/hostvpc/vpcctl/pkg/version"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var errorByCodeCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "errors",
	Name:      "by_code",
	Help:      "number of errors partitioned by code, label, and version info",
}, []string{"code_name", "label", "tag", "commit", "caller"})

func init() {
	prometheus.MustRegister(errorByCodeCounter)
}

type ErrorType struct {
	codeName string
}

func (t *ErrorType) CodeName() string {
	return t.codeName
}

var (
	EInternalErrorType    = &ErrorType{"INTERNAL_ERROR"}
	EInvalidArgumentType  = &ErrorType{"INVALID_ARGUMENT"}
	EEntryNotFoundType    = &ErrorType{"NOT_FOUND"}
	EExistsType           = &ErrorType{"ENTRY_EXISTS"}
	EStorageErrorType     = &ErrorType{"STORAGE_ERROR"}
	EPrimitiveFailureType = &ErrorType{"PRIMITIVE_FAILURE"}
	EConfigErrorType      = &ErrorType{"CONFIG_ERROR"}
	EPrecheckFailureType  = &ErrorType{"PRECHECK_FAILURE"}
)

func EInternalError(description string, err error, fields ...zap.Field) *Error {
	return newError(EInternalErrorType, description, err, nil, fields...)
}

func EInvalidArgument(description string, err error, fields ...zap.Field) *Error {
	return newError(EInvalidArgumentType, description, err, nil, fields...)
}

func EInvalidField(description string, failedField string, err error, fields ...zap.Field) *Error {
	return newError(EInvalidArgumentType, description, err, &failedField, fields...)
}

func EEntryNotFound(description string, err error, fields ...zap.Field) *Error {
	return newError(EEntryNotFoundType, description, err, nil, fields...)
}

func EExists(description string, err error, fields ...zap.Field) *Error {
	return newError(EExistsType, description, err, nil, fields...)
}

func EStorageError(description string, err error, fields ...zap.Field) *Error {
	return newError(EStorageErrorType, description, err, nil, fields...)
}

// EPrimitiveFailure reports a failed kernel-object operation. The caller is
// expected to roll back any steps completed before this one.
func EPrimitiveFailure(description string, err error, fields ...zap.Field) *Error {
	return newError(EPrimitiveFailureType, description, err, nil, fields...)
}

func EConfigError(description string, err error, fields ...zap.Field) *Error {
	return newError(EConfigErrorType, description, err, nil, fields...)
}

// EPrecheckFailure is fatal: it means the process lacks a hard precondition
// (privilege, companion binary) and must not attempt any other logic.
func EPrecheckFailure(description string, err error, fields ...zap.Field) *Error {
	return newError(EPrecheckFailureType, description, err, nil, fields...)
}

func WEntryNotFound(label, description string, err error, fields ...zap.Field) *Error {
	return newWarning(EEntryNotFoundType, description, err, nil, label, fields...)
}

func WPrimitiveFailure(label, description string, err error, fields ...zap.Field) *Error {
	return newWarning(EPrimitiveFailureType, description, err, nil, label, fields...)
}

type Error struct {
	errorType    *ErrorType
	description  string
	nestedError  error
	failedField  *string
	warningLabel string

	externalLoggerLevel string
}

func (e *Error) Is(target error) bool {
	if err2, ok := target.(*Error); ok {
		return e.errorType == err2.errorType
	}

	return false
}

func (e *Error) Unwrap() error {
	return e.nestedError
}

func (e *Error) Error() string {
	text := e.description
	if e.nestedError != nil {
		text = text + ": " + e.nestedError.Error()
	}
	return text
}

func (e *Error) CodeName() string {
	return e.errorType.codeName
}

// IsKind tells whether err is an *Error of the given type.
func IsKind(err error, t *ErrorType) bool {
	if e, ok := err.(*Error); ok {
		return e.errorType == t
	}
	return false
}

func newError(errorType *ErrorType, description string, err error, failedField *string, fields ...zap.Field) *Error {
	e := &Error{
		errorType:           errorType,
		description:         description,
		nestedError:         err,
		failedField:         failedField,
		externalLoggerLevel: string(sentry.LevelError),
	}

	sendToExternalServices(e, fields...)
	zap.L().Error(e.Error(), fields...)
	return e
}

func newWarning(errorType *ErrorType, msg string, err error, failedField *string, label string, fields ...zap.Field) *Error {
	if len(label) == 0 {
		label = "unset"
	}
	w := &Error{
		errorType:           errorType,
		description:         msg,
		nestedError:         err,
		failedField:         failedField,
		warningLabel:        label,
		externalLoggerLevel: string(sentry.LevelWarning),
	}

	sendToExternalServices(w, fields...)
	zap.L().Warn(w.Error(), fields...)
	return w
}

func sendToExternalServices(e *Error, fields ...zap.Field) {
	errorByCodeCounter.WithLabelValues(
		e.errorType.codeName,
		e.warningLabel,
		version.GetTag(),
		version.GetCommit(),
		getCaller(),
	).Inc()

	// fill the scope with error-related fields and push an error
	// within that scope.
	sentry.CurrentHub().WithScope(func(scope *sentry.Scope) {
		scope.SetTag("err_type", e.errorType.codeName)

		if e.failedField != nil {
			scope.SetExtra("failed_field", *e.failedField)
		}
		if len(e.warningLabel) > 0 {
			scope.SetExtra("warn_label", e.warningLabel)
		}

		if len(fields) > 0 {
			encoder := zapcore.NewJSONEncoder(zapcore.EncoderConfig{})
			buf, err := encoder.EncodeEntry(zapcore.Entry{}, fields)
			if err == nil {
				scope.SetExtra("zap_fields", buf.String())
			}
		}

		if e.nestedError == nil {
			scope.SetLevel(sentry.Level(e.externalLoggerLevel))
			sentry.CaptureMessage(e.description)
		} else {
			scope.SetExtra("message", e.description)
			sentry.CaptureException(e.nestedError)
		}
	})
}

func getCaller() string {
	// skip callers in this file, so (srcFile, line) points
	// to the one who invoked xerror.EInternalError(...)
	_, srcFile, line, ok := runtime.Caller(4)
	if !ok {
		return "unknown"
	}

	srcFile = cutCallerFilePath(srcFile)
	return fmt.Sprintf("%s:%d", srcFile, line)
}

// /home/user/src/project/package/foo.go -> package/foo.go
func cutCallerFilePath(file string) string {
	oneSlash := false
	for i := len(file) - 1; i > 0; i-- {
		if file[i] == os.PathSeparator {
			if oneSlash {
				file = file[i+1:]
				break
			}
			oneSlash = true
		}
	}
	return file
}
