package models

import (
	"errors"
)

var (
	ErrNoRecord           = errors.New("models: no matching record found")
	ErrInvalidCredentials = errors.New("models: invalid credentials")
	ErrDuplicatePhone     = errors.New("models: duplicate phone number")
	ErrUserNotFound       = errors.New("models: user not found")
	ErrInvalidPassword    = errors.New("models: invalid password")
	ErrListingNotFound    = errors.New("listing not found")
	ErrReviewNotFound     = errors.New("review not found")
	ErrChatNotFound       = errors.New("chat not found")
	ErrStoryNotFound      = errors.New("story not found")
	ErrComplaintNotFound  = errors.New("complaint not found")
	ErrNotOwner           = errors.New("caller does not own this record")
)
