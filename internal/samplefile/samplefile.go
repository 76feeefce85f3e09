// Package samplefile stores sample buffers as text, one value per line.
// Complex values use the (re+imj) notation so files stay readable by the
// numeric tools the channel server is usually driven from.
package samplefile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// WriteReal writes one float per line.
func WriteReal(w io.Writer, x []float64) error {
	bw := bufio.NewWriter(w)
	for _, v := range x {
		bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ReadReal reads one float per line. Blank lines are skipped.
func ReadReal(r io.Reader) ([]float64, error) {
	var out []float64
	err := eachLine(r, func(n int, line string) error {
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

// WriteComplex writes one complex value per line as (re+imj).
func WriteComplex(w io.Writer, x []complex128) error {
	bw := bufio.NewWriter(w)
	for _, v := range x {
		s := strconv.FormatComplex(v, 'g', -1, 128)
		bw.WriteString(strings.TrimSuffix(s, "i)") + "j)")
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ReadComplex reads one complex value per line, accepting both the j and
// the i suffix, with or without parentheses. A bare real is accepted too.
func ReadComplex(r io.Reader) ([]complex128, error) {
	var out []complex128
	err := eachLine(r, func(n int, line string) error {
		line = strings.Replace(line, "j", "i", 1)
		v, err := strconv.ParseComplex(line, 128)
		if err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

// SaveReal writes x to path, replacing any existing file.
func SaveReal(path string, x []float64) error {
	return save(path, func(w io.Writer) error { return WriteReal(w, x) })
}

// LoadReal reads a file written by SaveReal.
func LoadReal(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	x, err := ReadReal(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return x, nil
}

// SaveComplex writes x to path, replacing any existing file.
func SaveComplex(path string, x []complex128) error {
	return save(path, func(w io.Writer) error { return WriteComplex(w, x) })
}

// LoadComplex reads a file written by SaveComplex.
func LoadComplex(path string) ([]complex128, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	x, err := ReadComplex(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return x, nil
}

func save(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func eachLine(r io.Reader, fn func(n int, line string) error) error {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := fn(n, line); err != nil {
			return err
		}
	}
	return sc.Err()
}
