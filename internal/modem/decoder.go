package modem

import "gonum.org/v1/gonum/mat"

// DecodeSymbols makes a nearest-neighbour decision for every received
// symbol and expands the chosen indices into bits.
func DecodeSymbols(c *Constellation, symbols []complex128) ([]int, []byte, error) {
	if len(symbols) == 0 {
		return []int{}, []byte{}, nil
	}
	row := mat.NewCDense(1, len(symbols), append([]complex128(nil), symbols...))
	indices, err := c.DecodeMatrix(row)
	if err != nil {
		return nil, nil, err
	}
	return indices, IndicesToBits(indices, c.Mod.BitsPerSymbol()), nil
}
