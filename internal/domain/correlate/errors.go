package correlate

import "errors"

// ErrUnknownPolicy is returned for an unrecognised team reuse policy name.
var ErrUnknownPolicy = errors.New("unknown team reuse policy")
