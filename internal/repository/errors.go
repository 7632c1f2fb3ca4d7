// Package repository holds the persistence layer: user accounts in MySQL and
// favorite locations in MongoDB. The sentinel errors below let handlers tell
// expected outcomes apart from storage failures.
package repository

import "errors"

// ErrUsernameExists is returned by UserRepo.Create when the username is
// already taken. Handlers answer 400.
var ErrUsernameExists = errors.New("username already exists")

// ErrUserNotFound is returned when no account matches a lookup.
var ErrUserNotFound = errors.New("user not found")
