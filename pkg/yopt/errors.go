// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopt

import (
	"errors"
	"fmt"
)

// MissingError is returned when no token or environment variable matched a
// parser. It is absorbed by Optional, Fallback, Many and OneOf.
type MissingError struct {
	Expected Meta
}

func (e *MissingError) Error() string {
	if u := e.Expected.Usage(); u != "" {
		return fmt.Sprintf("expected %s, pass --help for usage information", u)
	}
	return "missing required argument, pass --help for usage information"
}

// ValueError is returned when a token matched syntactically but its value
// could not be used. It is never absorbed: the user clearly meant this item.
// UserMsg contains the clean user-facing message, while Err contains the
// underlying conversion failure.
type ValueError struct {
	Pos     int    // Absolute token position, -1 for values taken from the environment
	Token   string // The offending text
	UserMsg string
	Err     error
}

func (e *ValueError) Error() string {
	return e.UserMsg
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

// UnexpectedError is returned when parsing succeeded but a token was left
// over.
type UnexpectedError struct {
	Pos   int
	Token string
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("%s is not expected in this context", e.Token)
}

// CompletionError carries rendered completion candidates. It is not a
// failure: the text belongs on stdout and the run exits successfully.
type CompletionError struct {
	Text string
}

func (e *CompletionError) Error() string {
	return "completion requested"
}

// HelpError carries rendered help or version text for stdout.
type HelpError struct {
	Text string
}

func (e *HelpError) Error() string {
	return "help requested"
}

// UnrenderableError is returned when completion or help output could not be
// formatted.
type UnrenderableError struct {
	Err error
}

func (e *UnrenderableError) Error() string {
	return "couldn't render completion info"
}

func (e *UnrenderableError) Unwrap() error {
	return e.Err
}

// IsMissing reports whether err is a recoverable "item not found" failure.
func IsMissing(err error) bool {
	var m *MissingError
	return errors.As(err, &m)
}

// IsStdout reports whether err is a control-flow exit whose text belongs on
// stdout, and returns that text.
func IsStdout(err error) (string, bool) {
	var c *CompletionError
	if errors.As(err, &c) {
		return c.Text, true
	}
	var h *HelpError
	if errors.As(err, &h) {
		return h.Text, true
	}
	return "", false
}

func isControl(err error) bool {
	_, ok := IsStdout(err)
	if ok {
		return true
	}
	var u *UnrenderableError
	return errors.As(err, &u)
}

// progress ranks an evaluation outcome for alternation. Higher is better;
// pos breaks ties between failures of the same rank.
func progress(err error) (rank, pos int) {
	if err == nil {
		return 3, 0
	}
	if isControl(err) {
		return 4, 0
	}
	var m *MissingError
	if errors.As(err, &m) {
		return 1, 0
	}
	var v *ValueError
	if errors.As(err, &v) {
		return 2, v.Pos
	}
	var u *UnexpectedError
	if errors.As(err, &u) {
		return 2, u.Pos
	}
	return 2, 0
}
