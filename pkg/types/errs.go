package types

import "errors"

// ErrEncoding indicates that a voltage could not be represented in the
// register's fixed-point format.
var ErrEncoding = errors.New("types: voltage offset cannot be encoded")
