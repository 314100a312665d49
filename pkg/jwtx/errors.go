package jwtx

import "errors"

// ErrMalformed is returned for any token that cannot be decoded into a
// complete claims record. Callers treat it exactly like "no session".
var ErrMalformed = errors.New("jwtx: malformed token")
