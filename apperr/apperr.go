// Package apperr is the error taxonomy shared by the services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	NotFound         Kind = "NOT_FOUND"
	Conflict         Kind = "CONFLICT"
	Forbidden        Kind = "FORBIDDEN"
	Validation       Kind = "VALIDATION"
	External         Kind = "EXTERNAL"
	SignatureInvalid Kind = "SIGNATURE_INVALID"
	Internal         Kind = "INTERNAL"
)

// Error carries a Kind for status mapping and a Code for matching with errors.Is.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap attaches a cause to a sentinel without losing its identity.
func Wrap(sentinel *Error, err error) *Error {
	return &Error{Kind: sentinel.Kind, Code: sentinel.Code, Message: sentinel.Message, Err: err}
}

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: Validation, Code: "VALIDATION", Message: fmt.Sprintf(format, args...)}
}

func Externalf(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: External, Code: "EXTERNAL", Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the Kind of err, Internal for anything outside the taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Something went wrong!"
}

var (
	ErrUserNotFound       = New(NotFound, "USER_NOT_FOUND", "User not found!")
	ErrCourseNotFound     = New(NotFound, "COURSE_NOT_FOUND", "Course not found!")
	ErrModuleNotFound     = New(NotFound, "MODULE_NOT_FOUND", "Module not found!")
	ErrLessonNotFound     = New(NotFound, "LESSON_NOT_FOUND", "Lesson not found!")
	ErrQuizNotFound       = New(NotFound, "QUIZ_NOT_FOUND", "Quiz not found!")
	ErrLabNotFound        = New(NotFound, "LAB_NOT_FOUND", "Lab not found!")
	ErrSubmissionNotFound = New(NotFound, "SUBMISSION_NOT_FOUND", "Submission not found!")

	ErrAlreadyEnrolled = New(Conflict, "ALREADY_ENROLLED", "User already enrolled in this course!")
	ErrEmailTaken      = New(Conflict, "EMAIL_TAKEN", "Email is already registered!")
	ErrQuizExists      = New(Conflict, "QUIZ_EXISTS", "This lesson already has a quiz!")

	ErrNotEnrolled          = New(Forbidden, "NOT_ENROLLED", "User not enrolled in this course!")
	ErrSubscriptionRequired = New(Forbidden, "SUBSCRIPTION_REQUIRED", "Active subscription required!")
	ErrLessonLocked         = New(Forbidden, "LESSON_LOCKED", "Lesson is not available!")
	ErrNotCourseOwner       = New(Forbidden, "NOT_COURSE_OWNER", "Access denied! You do not own this course.")

	ErrSignatureInvalid = New(SignatureInvalid, "SIGNATURE_INVALID", "Invalid signature!")
)
