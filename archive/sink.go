package archive

import "github.com/apackfmt/apack/binary"

// binaryWriterSink adapts a *binary.Writer to io.Writer so the chunk
// writer can stream chunk bodies through the same offset-tracking writer
// the archive writer uses for every other record, keeping bw.Written()
// authoritative for entry/TOC/trailer offset capture.
type binaryWriterSink struct {
	bw *binary.Writer
}

func (s binaryWriterSink) Write(p []byte) (int, error) {
	if err := s.bw.WriteBytes(p); err != nil {
		return 0, err
	}
	return len(p), nil
}
