package binfmt

import "github.com/pkg/errors"

// ErrParse indicates that the object header was present but could not be
// parsed (malformed ELF/PE, or a file of an unrecognized kind entirely).
var ErrParse = errors.New("binfmt: unable to parse object")

// ErrUnsupported indicates a recognized object family this loader does not
// handle (e.g. Mach-O).
var ErrUnsupported = errors.New("binfmt: unsupported object kind")
