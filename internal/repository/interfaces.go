// Package repository declares the storage contracts used by the services.
// Every method that touches user data is scoped by user id.
package repository

import "errors"

// ErrNotFound is returned when a row does not exist or belongs to another user.
var ErrNotFound = errors.New("repository: not found")
