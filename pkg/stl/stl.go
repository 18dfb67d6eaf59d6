// Package stl parses STL meshes in ASCII and binary form.
package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// STL format errors.
var (
	ErrTruncated = errors.New("truncated STL data")
	ErrMalformed = errors.New("malformed ASCII STL")
)

const (
	headerSize   = 80
	triangleSize = 50 // normal + 3 vertices + attribute count
)

// Triangle is one facet.
type Triangle struct {
	Normal mgl32.Vec3
	V      [3]mgl32.Vec3
}

// Mesh is a parsed STL file.
type Mesh struct {
	Name      string
	Triangles []Triangle
}

// Bounds returns the axis-aligned bounding box of all vertices.
// An empty mesh returns zero vectors.
func (m *Mesh) Bounds() (min, max mgl32.Vec3) {
	if len(m.Triangles) == 0 {
		return
	}
	min = m.Triangles[0].V[0]
	max = min
	for _, t := range m.Triangles {
		for _, v := range t.V {
			for i := 0; i < 3; i++ {
				min[i] = float32(math.Min(float64(min[i]), float64(v[i])))
				max[i] = float32(math.Max(float64(max[i]), float64(v[i])))
			}
		}
	}
	return min, max
}

// Parse detects the encoding and parses data.
// A file is treated as binary when its size matches the declared triangle
// count, since binary headers may also begin with "solid".
func Parse(data []byte) (*Mesh, error) {
	if len(data) >= headerSize+4 {
		count := binary.LittleEndian.Uint32(data[headerSize:])
		if uint64(len(data)) == headerSize+4+uint64(count)*triangleSize {
			return parseBinary(data)
		}
	}
	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return parseASCII(data)
	}
	return parseBinary(data)
}

// ParseFile parses an STL file from disk.
func ParseFile(path string) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading STL file: %w", err)
	}
	return Parse(data)
}

func parseBinary(data []byte) (*Mesh, error) {
	if len(data) < headerSize+4 {
		return nil, fmt.Errorf("%w: header", ErrTruncated)
	}

	m := &Mesh{Name: string(bytes.TrimRight(data[:headerSize], "\x00 "))}
	count := int(binary.LittleEndian.Uint32(data[headerSize:]))
	body := data[headerSize+4:]
	if len(body) < count*triangleSize {
		return nil, fmt.Errorf("%w: %d triangles declared, room for %d", ErrTruncated, count, len(body)/triangleSize)
	}

	m.Triangles = make([]Triangle, count)
	for i := range m.Triangles {
		rec := body[i*triangleSize:]
		var vecs [4]mgl32.Vec3
		for j := range vecs {
			for k := 0; k < 3; k++ {
				off := (j*3 + k) * 4
				vecs[j][k] = math.Float32frombits(binary.LittleEndian.Uint32(rec[off:]))
			}
		}
		m.Triangles[i] = newTriangle(vecs[0], vecs[1], vecs[2], vecs[3])
	}
	return m, nil
}

func parseASCII(data []byte) (*Mesh, error) {
	m := &Mesh{}
	scanner := bufio.NewScanner(bytes.NewReader(data))

	var normal mgl32.Vec3
	var verts []mgl32.Vec3
	line := 0

	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				m.Name = strings.Join(fields[1:], " ")
			}
		case "facet":
			if len(fields) < 5 || fields[1] != "normal" {
				return nil, fmt.Errorf("%w: line %d: facet without normal", ErrMalformed, line)
			}
			n, err := parseVec(fields[2:5])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
			}
			normal = n
			verts = verts[:0]
		case "vertex":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: short vertex", ErrMalformed, line)
			}
			v, err := parseVec(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
			}
			verts = append(verts, v)
		case "endfacet":
			if len(verts) != 3 {
				return nil, fmt.Errorf("%w: line %d: facet with %d vertices", ErrMalformed, line, len(verts))
			}
			m.Triangles = append(m.Triangles, newTriangle(normal, verts[0], verts[1], verts[2]))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ASCII STL: %w", err)
	}
	return m, nil
}

func parseVec(fields []string) (mgl32.Vec3, error) {
	var v mgl32.Vec3
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return v, err
		}
		v[i] = float32(x)
	}
	return v, nil
}

// newTriangle fills in a face normal when the file leaves it zero.
func newTriangle(n, a, b, c mgl32.Vec3) Triangle {
	if n == (mgl32.Vec3{}) {
		cross := b.Sub(a).Cross(c.Sub(a))
		if cross.Len() > 0 {
			n = cross.Normalize()
		}
	}
	return Triangle{Normal: n, V: [3]mgl32.Vec3{a, b, c}}
}
