package stable

import "io"

// Writer writes sequentially from an offset and grows stable memory as needed.
type Writer struct {
	store *Store
	off   uint64
}

// NewWriter returns a Writer starting at off.
func (s *Store) NewWriter(off uint64) *Writer {
	return &Writer{store: s, off: off}
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	if err := w.store.EnsureBytes(w.off + uint64(len(p))); err != nil {
		return 0, err
	}
	if err := w.store.Write(w.off, p); err != nil {
		return 0, err
	}
	w.off += uint64(len(p))
	return len(p), nil
}

// Offset returns the position of the next write.
func (w *Writer) Offset() uint64 {
	return w.off
}

// Reader reads sequentially from an offset up to the end of stable memory.
type Reader struct {
	store *Store
	off   uint64
}

// NewReader returns a Reader starting at off.
func (s *Store) NewReader(off uint64) *Reader {
	return &Reader{store: s, off: off}
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	size := r.store.Bytes()
	if r.off >= size {
		return 0, io.EOF
	}
	if rem := size - r.off; uint64(len(p)) > rem {
		p = p[:rem]
	}
	if err := r.store.ReadInto(r.off, p); err != nil {
		return 0, err
	}
	r.off += uint64(len(p))
	return len(p), nil
}

// Offset returns the position of the next read.
func (r *Reader) Offset() uint64 {
	return r.off
}
