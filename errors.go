package javacomplete

import "github.com/cockroachdb/errors"

var (
	// ErrConfigNotFound is returned when no config file exists in a directory or its parents.
	ErrConfigNotFound = errors.New("no .javacomplete.yaml found")

	// ErrEmptyExpr is returned when parsing an empty type expression.
	ErrEmptyExpr = errors.New("empty expression")
)
