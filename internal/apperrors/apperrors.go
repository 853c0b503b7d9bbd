// Package apperrors defines the sentinel errors the service layer surfaces to
// the HTTP layer. Use errors.Is() to classify an error in calling code.
package apperrors

import "errors"

var (
  // ErrNotFound indicates the requested chat/user/bot/puzzle does not exist.
  ErrNotFound = errors.New("not found")

  // ErrInvalidInput indicates the request was well-formed JSON but violates a
  // domain rule (duplicate username, malformed sender type, ...).
  ErrInvalidInput = errors.New("invalid input")

  // ErrUnauthorized indicates bad login credentials or a bad token.
  ErrUnauthorized = errors.New("unauthorized")
)
