package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz document does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a question ID does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrUserNotFound indicates the user document does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when registering an already-known email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrForbidden is returned when a non-admin attempts an admin action.
	ErrForbidden = errors.New("only administrators can perform this action")
	// ErrSelfDemotion is returned when an admin tries to demote themselves.
	ErrSelfDemotion = errors.New("cannot demote yourself")
)
