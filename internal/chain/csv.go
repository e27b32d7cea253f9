package chain

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes the chain as a header row of parameter names followed by
// one row per sample.
func (c *Chain) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(c.Names); err != nil {
		return err
	}
	row := make([]string, c.Dim())
	for _, s := range c.Samples {
		for j, v := range s {
			row[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}

// ReadCSV parses a chain written by WriteCSV (or by an external sampler
// following the same format). The backend label is attached by the caller.
func ReadCSV(r io.Reader) (*Chain, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("chain csv: missing header: %w", err)
	}

	c := New("", header, 0)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("chain csv: %w", err)
		}
		if len(rec) != len(header) {
			return nil, fmt.Errorf("chain csv: line %d has %d fields, want %d", line, len(rec), len(header))
		}
		s := make([]float64, len(rec))
		for j, f := range rec {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("chain csv: line %d field %d: %w", line, j, err)
			}
			s[j] = v
		}
		c.Samples = append(c.Samples, s)
	}

	if len(c.Samples) == 0 {
		return nil, fmt.Errorf("chain csv: no samples")
	}
	return c, nil
}
