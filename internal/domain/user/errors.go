package user

import "errors"

var (
	ErrUnauthenticated  = errors.New("please login")
	ErrForbidden        = errors.New("you do not have required permission")
	ErrUserNotFound     = errors.New("user not found")
	ErrUserEmailExists  = errors.New("email already registered")
	ErrUserInactive     = errors.New("user is inactive")
	ErrInvalidRole      = errors.New("invalid role")
	ErrNoDepartment     = errors.New("user is not assigned to a department")
	ErrCannotDemoteSelf = errors.New("cannot change your own role")
	ErrSelfReview       = errors.New("you cannot review your own work")
)
