// Package framefile implements the byte-level codec of the ORNFRAME
// raw-frame container: an uncompressed magic-plus-version prologue
// followed by a compressed stream of length-prefixed records.
//
// This package handles only bytes. Compression and the mapping to the
// public frame type live in the parent package.
package framefile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	// Magic opens every container, ahead of any compression.
	Magic = "ORNFRAME"
	// Version is the record layout version.
	Version = 1
)

// MaxDataLen bounds a record's pixel payload. A corrupt length prefix
// fails here instead of asking the allocator for gigabytes. String
// fields need no such bound: their u16 prefixes cannot express more
// than 64 KiB.
const MaxDataLen = 256 * 1024 * 1024

// ErrBadMagic means the reader is not looking at a frame container at
// all. Checked against the raw stream, before decompression.
var ErrBadMagic = errors.New("framedecode: bad frame container magic")

// Record is one raw frame in wire form. Field order matches the record
// layout: tag, geometry, sequencing, provenance, payload.
type Record struct {
	Tag      string
	Width    uint32
	Height   uint32
	Seq      uint64
	UnixNano int64
	Source   string
	Trace    string
	Data     []byte
}

// WriteHeader writes the uncompressed container prologue.
func WriteHeader(w io.Writer) error {
	if _, err := io.WriteString(w, Magic); err != nil {
		return fmt.Errorf("framedecode: write container magic: %w", err)
	}
	if _, err := w.Write([]byte{Version}); err != nil {
		return fmt.Errorf("framedecode: write container version: %w", err)
	}
	return nil
}

// ReadHeader consumes and checks the prologue.
func ReadHeader(r io.Reader) error {
	buf := make([]byte, len(Magic)+1)
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("framedecode: read container header: %w", noEOF(err))
	}
	if string(buf[:len(Magic)]) != Magic {
		return ErrBadMagic
	}
	if v := buf[len(Magic)]; v != Version {
		return fmt.Errorf("framedecode: unsupported container version %d", v)
	}
	return nil
}

// WriteRecord appends one record to w, all fields BigEndian.
func WriteRecord(w io.Writer, rec Record) error {
	if len(rec.Data) > MaxDataLen {
		return fmt.Errorf("framedecode: frame data of %d bytes exceeds container limit", len(rec.Data))
	}
	if err := writeString(w, rec.Tag); err != nil {
		return fmt.Errorf("framedecode: write record tag: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, rec.Width); err != nil {
		return fmt.Errorf("framedecode: write record geometry: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, rec.Height); err != nil {
		return fmt.Errorf("framedecode: write record geometry: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, rec.Seq); err != nil {
		return fmt.Errorf("framedecode: write record seq: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, rec.UnixNano); err != nil {
		return fmt.Errorf("framedecode: write record timestamp: %w", err)
	}
	if err := writeString(w, rec.Source); err != nil {
		return fmt.Errorf("framedecode: write record source: %w", err)
	}
	if err := writeString(w, rec.Trace); err != nil {
		return fmt.Errorf("framedecode: write record trace: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(rec.Data))); err != nil {
		return fmt.Errorf("framedecode: write record data length: %w", err)
	}
	if _, err := w.Write(rec.Data); err != nil {
		return fmt.Errorf("framedecode: write record data: %w", err)
	}
	return nil
}

// ReadRecord reads the next record.
//
// A stream that ends exactly at a record boundary returns io.EOF,
// untranslated, so callers can range until clean end. A stream that
// ends inside a record is corruption and comes back wrapped.
func ReadRecord(r io.Reader) (Record, error) {
	var rec Record

	tag, err := readString(r)
	if err != nil {
		if err == io.EOF {
			return rec, io.EOF
		}
		return rec, fmt.Errorf("framedecode: read record tag: %w", noEOF(err))
	}
	rec.Tag = tag

	if err := binary.Read(r, binary.BigEndian, &rec.Width); err != nil {
		return rec, fmt.Errorf("framedecode: read record geometry: %w", noEOF(err))
	}
	if err := binary.Read(r, binary.BigEndian, &rec.Height); err != nil {
		return rec, fmt.Errorf("framedecode: read record geometry: %w", noEOF(err))
	}
	if err := binary.Read(r, binary.BigEndian, &rec.Seq); err != nil {
		return rec, fmt.Errorf("framedecode: read record seq: %w", noEOF(err))
	}
	if err := binary.Read(r, binary.BigEndian, &rec.UnixNano); err != nil {
		return rec, fmt.Errorf("framedecode: read record timestamp: %w", noEOF(err))
	}
	if rec.Source, err = readString(r); err != nil {
		return rec, fmt.Errorf("framedecode: read record source: %w", noEOF(err))
	}
	if rec.Trace, err = readString(r); err != nil {
		return rec, fmt.Errorf("framedecode: read record trace: %w", noEOF(err))
	}

	var dataLen uint32
	if err := binary.Read(r, binary.BigEndian, &dataLen); err != nil {
		return rec, fmt.Errorf("framedecode: read record data length: %w", noEOF(err))
	}
	if dataLen > MaxDataLen {
		return rec, fmt.Errorf("framedecode: record data length %d exceeds container limit", dataLen)
	}
	rec.Data = make([]byte, dataLen)
	if _, err := io.ReadFull(r, rec.Data); err != nil {
		return rec, fmt.Errorf("framedecode: read record data: %w", noEOF(err))
	}
	return rec, nil
}

// writeString writes a u16 length prefix and the bytes.
func writeString(w io.Writer, s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("string field of %d bytes does not fit a u16 prefix", len(s))
	}
	if err := binary.Write(w, binary.BigEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// readString reads a u16-prefixed string. A bare io.EOF means the
// stream ended before the prefix; the caller decides whether that is a
// clean end or truncation.
func readString(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", noEOF(err)
	}
	return string(buf), nil
}

// noEOF turns a bare EOF inside a record into ErrUnexpectedEOF: the
// stream stopped mid-field.
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
