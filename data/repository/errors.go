package repository

import "errors"

var (
	ErrAlreadyExists = errors.New("error record already exists")
	ErrNotFound      = errors.New("error record not found")
)
