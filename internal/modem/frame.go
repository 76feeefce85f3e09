package modem

// AssembleFrame returns preamble, data and the preamble reversed in time,
// concatenated into a new slice. The trailing copy is not conjugated.
func AssembleFrame(preamble, data []complex128) []complex128 {
	frame := make([]complex128, 0, 2*len(preamble)+len(data))
	frame = append(frame, preamble...)
	frame = append(frame, data...)
	return append(frame, reversed(preamble)...)
}

func reversed(x []complex128) []complex128 {
	out := make([]complex128, len(x))
	for i, v := range x {
		out[len(x)-1-i] = v
	}
	return out
}
