// Copyright 2020 CNI authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	pkgerrors "github.com/pkg/errors"
)

// New returns an error with the supplied message.
func New(message string) error {
	return pkgerrors.New(message)
}

// Errorf formats an error message.
func Errorf(format string, args ...interface{}) error {
	return pkgerrors.Errorf(format, args...)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return pkgerrors.Is(err, target)
}

// Annotate is used to add extra context to an existing error. The return will be
// a new error which carries error message from both context message and existing error.
// The existing error stays reachable through errors.Is/As and Cause.
func Annotate(err error, message string) error {
	return pkgerrors.WithMessage(err, message)
}

// Annotatef is used to add extra context with args to an existing error. The return will be
// a new error which carries error message from both context message and existing error.
func Annotatef(err error, message string, args ...interface{}) error {
	return pkgerrors.WithMessagef(err, message, args...)
}

// Cause returns the innermost error that was annotated.
func Cause(err error) error {
	return pkgerrors.Cause(err)
}
