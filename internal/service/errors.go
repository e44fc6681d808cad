package service

import "errors"

var (
	ErrTopicNotFound      = errors.New("topic not found")
	ErrResponseNotFound   = errors.New("response not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateTopic     = errors.New("topic with the same title and body already exists")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("operation not allowed")
)
