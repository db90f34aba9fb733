package memo

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// zstdHandler wraps another handler with zstd stream compression. Enabled
// with WithCompression; the artifact extension gains a ".zst" suffix so
// compressed and uncompressed artifacts never collide.
type zstdHandler struct {
	inner Handler
}

func (h zstdHandler) Ext() string { return h.inner.Ext() + ".zst" }

func (h zstdHandler) Encode(w io.Writer, value any, opts Options) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	if err := h.inner.Encode(zw, value, opts); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func (h zstdHandler) Decode(r io.Reader, out any, opts Options) error {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return err
	}
	defer zr.Close()
	return h.inner.Decode(zr, out, opts)
}
