package memo

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"
)

// Default size for the buffer used when copying raw payloads.
const defaultBufferSize = 32 * 1024 // 32KB

// bufferPool is a pool of byte slices used for payload I/O.
var bufferPool = sync.Pool{
	New: func() interface{} {
		buffer := make([]byte, defaultBufferSize)
		return &buffer
	},
}

// gobHandler is the generic-object handler and the default filetype.
type gobHandler struct{}

func (gobHandler) Ext() string { return ".gob" }

func (gobHandler) Encode(w io.Writer, value any, opts Options) error {
	return gob.NewEncoder(w).Encode(value)
}

func (gobHandler) Decode(r io.Reader, out any, opts Options) error {
	return gob.NewDecoder(r).Decode(out)
}

// rawHandler stores a []byte payload verbatim.
type rawHandler struct{}

func (rawHandler) Ext() string { return ".bin" }

func (rawHandler) Encode(w io.Writer, value any, opts Options) error {
	data, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("raw handler requires []byte, got %T", value)
	}

	bufPtr := bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer bufferPool.Put(bufPtr)

	_, err := io.CopyBuffer(w, bytes.NewReader(data), buffer)
	return err
}

func (rawHandler) Decode(r io.Reader, out any, opts Options) error {
	target, ok := out.(*[]byte)
	if !ok {
		return fmt.Errorf("raw handler requires *[]byte, got %T", out)
	}

	bufPtr := bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer bufferPool.Put(bufPtr)

	var buf bytes.Buffer
	if _, err := io.CopyBuffer(&buf, r, buffer); err != nil {
		return err
	}
	*target = buf.Bytes()
	return nil
}

// jsonHandler stores any JSON-encodable payload. The save option "indent"
// (string) enables pretty printing.
type jsonHandler struct{}

func (jsonHandler) Ext() string { return ".json" }

func (jsonHandler) Encode(w io.Writer, value any, opts Options) error {
	enc := json.NewEncoder(w)
	if indent := opts.String("indent", ""); indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(value)
}

func (jsonHandler) Decode(r io.Reader, out any, opts Options) error {
	dec := json.NewDecoder(r)
	if opts.Bool("strict", false) {
		dec.DisallowUnknownFields()
	}
	return dec.Decode(out)
}

// yamlHandler stores any YAML-encodable payload.
type yamlHandler struct{}

func (yamlHandler) Ext() string { return ".yaml" }

func (yamlHandler) Encode(w io.Writer, value any, opts Options) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(value); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func (yamlHandler) Decode(r io.Reader, out any, opts Options) error {
	dec := yaml.NewDecoder(r)
	if opts.Bool("strict", false) {
		dec.KnownFields(true)
	}
	return dec.Decode(out)
}
