// Package repositories holds errors shared by the postgres
// repositories in its subpackages.
package repositories

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)
