package chunk

import (
	"fmt"
	"io"

	"github.com/apackfmt/apack/apackformat"
	"github.com/apackfmt/apack/errs"
)

// Reader reverses Writer: an io.Reader over the entry's original bytes,
// reconstructed chunk by chunk from src. It stops after the chunk whose
// header carries the LAST flag; reading beyond that yields io.EOF.
type Reader struct {
	src       io.Reader
	processor *Processor
	aad       AADFunc

	current []byte // undelivered bytes from the chunk in progress
	index   int32
	done    bool
}

// NewReader builds a chunked reader over src.
func NewReader(src io.Reader, processor *Processor, aad AADFunc) *Reader {
	return &Reader{src: src, processor: processor, aad: aad}
}

// Read implements io.Reader, serving reconstructed original bytes across
// chunk boundaries transparently.
func (r *Reader) Read(p []byte) (int, error) {
	for len(r.current) == 0 {
		if r.done {
			return 0, io.EOF
		}
		if err := r.nextChunk(); err != nil {
			return 0, errs.Classify(err)
		}
	}

	n := copy(p, r.current)
	r.current = r.current[n:]
	return n, nil
}

func (r *Reader) nextChunk() error {
	headerBytes := make([]byte, apackformat.ChunkHeaderSize)
	if _, err := io.ReadFull(r.src, headerBytes); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrTruncated, err)
	}

	var header apackformat.ChunkHeader
	if err := header.Parse(headerBytes); err != nil {
		return err
	}

	body := make([]byte, header.StoredSize)
	if header.StoredSize > 0 {
		if _, err := io.ReadFull(r.src, body); err != nil {
			return fmt.Errorf("%w: %w", errs.ErrTruncated, err)
		}
	}

	var aad []byte
	if r.aad != nil {
		aad = r.aad(header.Index)
	}

	original, err := r.processor.ProcessForRead(body, header.OriginalSize, header.IsCompressed(), header.IsEncrypted(), aad)
	if err != nil {
		return err
	}

	checksum := r.processor.Checksum(original)
	if checksum != header.Checksum {
		return fmt.Errorf("%w: chunk %d", errs.ErrChunkChecksumMismatch, header.Index)
	}

	if header.Index != r.index {
		return fmt.Errorf("%w: expected chunk %d, got %d", errs.ErrInvalidSize, r.index, header.Index)
	}

	r.current = original
	r.index++
	if header.IsLast() {
		r.done = true
	}
	return nil
}
