package memo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Array is a dense n-dimensional array with named dimensions. Values are
// laid out in row-major order over Shape.
type Array struct {
	Name   string            `json:"name"`
	Dims   []string          `json:"dims"`
	Shape  []int             `json:"shape"`
	Values []float64         `json:"values"`
	Attrs  map[string]string `json:"attrs"`
}

// Len returns the number of elements implied by the shape.
func (a Array) Len() int {
	if len(a.Shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// Dataset groups named arrays that share dimensions.
type Dataset struct {
	Vars  map[string]Array  `json:"vars"`
	Attrs map[string]string `json:"attrs"`
}

// labeledHandler stores Array and Dataset payloads under a single fixed
// extension. A stored artifact may hold either form; Decode attempts the
// narrower Array first and falls back to Dataset when that fails. Strict
// field matching makes the trial decode reliable: an artifact of one form
// never half-decodes as the other.
type labeledHandler struct{}

func (labeledHandler) Ext() string { return ".grid" }

func (labeledHandler) Encode(w io.Writer, value any, opts Options) error {
	switch v := value.(type) {
	case Array, *Array, Dataset, *Dataset:
		return json.NewEncoder(w).Encode(v)
	}
	return fmt.Errorf("labeled handler requires Array or Dataset, got %T", value)
}

func (labeledHandler) Decode(r io.Reader, out any, opts Options) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	var arr Array
	if err := decodeStrict(data, &arr); err == nil {
		return assignLabeled(out, arr)
	}

	var ds Dataset
	if err := decodeStrict(data, &ds); err != nil {
		return err
	}
	return assignLabeled(out, ds)
}

// decodeStrict decodes JSON rejecting unknown fields, so an Array artifact
// never passes as a Dataset or vice versa.
func decodeStrict(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

// assignLabeled places a decoded Array or Dataset into the caller's target.
func assignLabeled(out, decoded any) error {
	switch target := out.(type) {
	case *Array:
		arr, ok := decoded.(Array)
		if !ok {
			return fmt.Errorf("artifact holds a Dataset, not an Array")
		}
		*target = arr
		return nil
	case *Dataset:
		ds, ok := decoded.(Dataset)
		if !ok {
			return fmt.Errorf("artifact holds an Array, not a Dataset")
		}
		*target = ds
		return nil
	case *any:
		*target = decoded
		return nil
	}
	return fmt.Errorf("labeled handler requires *Array, *Dataset or *any, got %T", out)
}
