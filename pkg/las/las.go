// Package las reads ASPRS LAS point cloud files, versions 1.0 through 1.4.
package las

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
)

// LAS format errors.
var (
	ErrInvalidSignature  = errors.New("invalid LAS signature")
	ErrUnsupportedFormat = errors.New("unsupported LAS point format")
	ErrTruncated         = errors.New("truncated LAS data")
)

const (
	signature      = "LASF"
	minHeaderSize  = 227
	headerSize13   = 235
	headerSize14   = 375
	compressedFlag = 0x80
)

// Header is the public header block.
type Header struct {
	VersionMajor uint8
	VersionMinor uint8
	SystemID     string
	Software     string
	HeaderSize   uint16
	PointOffset  uint32
	PointFormat  uint8
	RecordLength uint16
	PointCount   uint64

	Scale  mgl64.Vec3
	Offset mgl64.Vec3
	Min    mgl64.Vec3
	Max    mgl64.Vec3
}

// HasColor reports whether point records carry RGB.
func (h *Header) HasColor() bool {
	switch h.PointFormat {
	case 2, 3, 5, 7, 8, 10:
		return true
	}
	return false
}

// Point is one decoded point record. Coordinates are raw integers;
// world = X*Scale + Offset.
type Point struct {
	X, Y, Z          int32
	Intensity        uint16
	ReturnNumber     uint8
	NumberOfReturns  uint8
	Classification   uint8
	Red, Green, Blue uint16
}

// layout describes where fields sit inside a record of a given format.
type layout struct {
	minLength int
	extended  bool // formats 6-10
	colorAt   int  // -1 when absent
}

var layouts = [...]layout{
	0:  {20, false, -1},
	1:  {28, false, -1},
	2:  {26, false, 20},
	3:  {34, false, 28},
	4:  {57, false, -1},
	5:  {63, false, 28},
	6:  {30, true, -1},
	7:  {36, true, 30},
	8:  {38, true, 30},
	9:  {59, true, -1},
	10: {67, true, 30},
}

// ParseHeader decodes the header block from the start of a file.
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < 4 || string(data[:4]) != signature {
		return nil, ErrInvalidSignature
	}
	if len(data) < minHeaderSize {
		return nil, fmt.Errorf("%w: header is %d bytes", ErrTruncated, len(data))
	}

	le := binary.LittleEndian
	h := &Header{
		VersionMajor: data[24],
		VersionMinor: data[25],
		SystemID:     cString(data[26:58]),
		Software:     cString(data[58:90]),
		HeaderSize:   le.Uint16(data[94:]),
		PointOffset:  le.Uint32(data[96:]),
		PointFormat:  data[104],
		RecordLength: le.Uint16(data[105:]),
		PointCount:   uint64(le.Uint32(data[107:])),
	}

	f64 := func(off int) float64 { return math.Float64frombits(le.Uint64(data[off:])) }
	h.Scale = mgl64.Vec3{f64(131), f64(139), f64(147)}
	h.Offset = mgl64.Vec3{f64(155), f64(163), f64(171)}
	h.Max = mgl64.Vec3{f64(179), f64(195), f64(211)}
	h.Min = mgl64.Vec3{f64(187), f64(203), f64(219)}

	if h.VersionMinor >= 4 && int(h.HeaderSize) >= headerSize14 && len(data) >= headerSize14 {
		if n := le.Uint64(data[247:]); n > 0 {
			h.PointCount = n
		}
	}

	if h.PointFormat&compressedFlag != 0 {
		return nil, fmt.Errorf("%w: compressed (LAZ) format %d", ErrUnsupportedFormat, h.PointFormat&^compressedFlag)
	}
	if int(h.PointFormat) >= len(layouts) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, h.PointFormat)
	}
	if int(h.RecordLength) < layouts[h.PointFormat].minLength {
		return nil, fmt.Errorf("%w: record length %d too short for format %d",
			ErrUnsupportedFormat, h.RecordLength, h.PointFormat)
	}
	for i := 0; i < 3; i++ {
		if h.Scale[i] == 0 {
			h.Scale[i] = 1
		}
	}
	return h, nil
}

// Reader streams point records from a LAS file.
type Reader struct {
	r      io.ReadSeeker
	closer io.Closer
	header *Header
	layout layout
	read   uint64
	short  bool
	buf    []byte
}

// Open opens a LAS file on disk. Close releases it.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening LAS file: %w", err)
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader parses the header of rs and positions it at the first point.
func NewReader(rs io.ReadSeeker) (*Reader, error) {
	head := make([]byte, headerSize14)
	n, err := io.ReadFull(rs, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		if errors.Is(err, io.EOF) {
			return nil, ErrInvalidSignature
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	h, err := ParseHeader(head[:n])
	if err != nil {
		return nil, err
	}
	if _, err := rs.Seek(int64(h.PointOffset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to point data: %w", err)
	}

	return &Reader{
		r:      rs,
		header: h,
		layout: layouts[h.PointFormat],
	}, nil
}

// Header returns the parsed header.
func (r *Reader) Header() *Header {
	return r.header
}

// Remaining returns how many records have not been read yet.
func (r *Reader) Remaining() uint64 {
	return r.header.PointCount - r.read
}

// ReadPoints decodes up to n records. It returns io.EOF once every record
// declared in the header has been read, and ErrTruncated when the file ends early.
func (r *Reader) ReadPoints(n int) ([]Point, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid chunk size %d", n)
	}
	if r.short {
		return nil, fmt.Errorf("%w: %d of %d points read", ErrTruncated, r.read, r.header.PointCount)
	}
	left := r.Remaining()
	if left == 0 {
		return nil, io.EOF
	}
	if uint64(n) > left {
		n = int(left)
	}

	size := int(r.header.RecordLength)
	if cap(r.buf) < n*size {
		r.buf = make([]byte, n*size)
	}
	buf := r.buf[:n*size]
	got, err := io.ReadFull(r.r, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading points: %w", err)
	}
	whole := got / size
	if whole == 0 {
		return nil, fmt.Errorf("%w: %d of %d points read", ErrTruncated, r.read, r.header.PointCount)
	}

	points := make([]Point, whole)
	for i := range points {
		points[i] = r.decode(buf[i*size : (i+1)*size])
	}
	r.read += uint64(whole)
	// Deliver a partial tail now and report truncation on the next call.
	r.short = whole < n
	return points, nil
}

func (r *Reader) decode(rec []byte) Point {
	le := binary.LittleEndian
	p := Point{
		X:         int32(le.Uint32(rec[0:])),
		Y:         int32(le.Uint32(rec[4:])),
		Z:         int32(le.Uint32(rec[8:])),
		Intensity: le.Uint16(rec[12:]),
	}
	if r.layout.extended {
		p.ReturnNumber = rec[14] & 0x0f
		p.NumberOfReturns = rec[14] >> 4
		p.Classification = rec[16]
	} else {
		p.ReturnNumber = rec[14] & 0x07
		p.NumberOfReturns = (rec[14] >> 3) & 0x07
		p.Classification = rec[15] & 0x1f
	}
	if at := r.layout.colorAt; at >= 0 {
		p.Red = le.Uint16(rec[at:])
		p.Green = le.Uint16(rec[at+2:])
		p.Blue = le.Uint16(rec[at+4:])
	}
	return p
}

// Close closes the underlying file when the reader was created by Open.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(bytes.TrimSpace(b))
}
