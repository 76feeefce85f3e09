package modem

import "errors"

// Configuration errors. They are returned as soon as they are detected and
// are never recoverable by retrying the same call.
var (
	ErrUnsupportedScheme     = errors.New("unsupported modulation scheme")
	ErrUnsupportedModulation = errors.New("unsupported constellation")
	ErrBitsPerSymbol         = errors.New("bits per symbol does not match constellation size")
	ErrBandPlan              = errors.New("invalid frequency band plan")
	ErrFilter                = errors.New("invalid shaping filter parameters")
	ErrDimension             = errors.New("observation must be a row or column vector")
	ErrNonASCII              = errors.New("message is not 7-bit ASCII")
)

// ErrNotImplemented marks paths the modem deliberately refuses to take,
// such as modulating a purely real baseband or receiving multi-band frames.
var ErrNotImplemented = errors.New("not implemented")

var (
	ErrSilence    = errors.New("cannot scale an all-zero signal")
	ErrShortInput = errors.New("input shorter than reference")
)
