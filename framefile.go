package framedecode

import (
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/e7canasta/orion-care-sensor/modules/framedecode/internal/framefile"
)

// FrameWriter records raw frames into an ORNFRAME container: a magic
// prologue followed by a zstd stream of frame records. The containers
// feed golden tests, field diagnostics, and offline decode runs.
//
// Not safe for concurrent use. Close flushes the compressed stream;
// a container without a Close is truncated.
type FrameWriter struct {
	enc *zstd.Encoder
}

// NewFrameWriter writes the container prologue to w and prepares the
// compressed stream. The caller keeps ownership of w and closes it
// after Close.
func NewFrameWriter(w io.Writer) (*FrameWriter, error) {
	if err := framefile.WriteHeader(w); err != nil {
		return nil, err
	}
	// Single-goroutine encoder: recording runs beside live capture and
	// must not fan out compression work.
	enc, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("framedecode: open container compressor: %w", err)
	}
	return &FrameWriter{enc: enc}, nil
}

// Write appends one frame. The frame is validated first: a torn frame
// is refused at record time, not discovered at replay time.
func (fw *FrameWriter) Write(frame Frame) error {
	if err := frame.Validate(); err != nil {
		return err
	}
	return framefile.WriteRecord(fw.enc, framefile.Record{
		Tag:      string(frame.Format),
		Width:    uint32(frame.Width),
		Height:   uint32(frame.Height),
		Seq:      frame.Seq,
		UnixNano: frame.Timestamp.UnixNano(),
		Source:   frame.SourceStream,
		Trace:    frame.TraceID,
		Data:     frame.Data,
	})
}

// Close flushes and ends the compressed stream.
func (fw *FrameWriter) Close() error {
	return fw.enc.Close()
}

// FrameReader replays raw frames from an ORNFRAME container.
//
// Not safe for concurrent use.
type FrameReader struct {
	dec *zstd.Decoder
}

// NewFrameReader checks the container prologue on r (ErrBadMagic when
// it is not a frame container, before any decompression) and opens the
// compressed stream.
func NewFrameReader(r io.Reader) (*FrameReader, error) {
	if err := framefile.ReadHeader(r); err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("framedecode: open container decompressor: %w", err)
	}
	return &FrameReader{dec: dec}, nil
}

// Read returns the next recorded frame. io.EOF signals the clean end
// of the container; an error mid-record means corruption and wraps the
// underlying cause. Each frame gets its own Data buffer.
//
// Frames are validated on the way out, mirroring Write: a forged
// record with geometry the module refuses to decode fails here, not
// inside a decode.
func (fr *FrameReader) Read() (Frame, error) {
	rec, err := framefile.ReadRecord(fr.dec)
	if err != nil {
		return Frame{}, err
	}
	frame := Frame{
		Seq:          rec.Seq,
		Timestamp:    time.Unix(0, rec.UnixNano),
		Format:       PixelFormat(rec.Tag),
		Width:        int(rec.Width),
		Height:       int(rec.Height),
		Data:         rec.Data,
		SourceStream: rec.Source,
		TraceID:      rec.Trace,
	}
	if err := frame.Validate(); err != nil {
		return Frame{}, fmt.Errorf("framedecode: container record seq %d: %w", rec.Seq, err)
	}
	return frame, nil
}

// Close releases the decompressor. The underlying reader stays open.
func (fr *FrameReader) Close() error {
	fr.dec.Close()
	return nil
}
