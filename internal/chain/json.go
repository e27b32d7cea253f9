package chain

import (
	"encoding/json"
	"io"
)

type jsonChain struct {
	Backend    string      `json:"backend"`
	Names      []string    `json:"param_names"`
	Samples    [][]float64 `json:"samples"`
	Accepted   int         `json:"accepted"`
	ElapsedSec float64     `json:"elapsed_sec"`
}

// WriteJSON writes the whole chain as a single JSON document.
func (c *Chain) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonChain{
		Backend:    c.Backend,
		Names:      c.Names,
		Samples:    c.Samples,
		Accepted:   c.Accepted,
		ElapsedSec: c.Elapsed.Seconds(),
	})
}
