package stl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const asciiCube = `solid unit
  facet normal 0 0 1
    outer loop
      vertex 0 0 1
      vertex 1 0 1
      vertex 1 1 1
    endloop
  endfacet
  facet normal 0 0 0
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
endsolid unit
`

// createTestBinary builds a binary STL whose header starts with "solid" to
// exercise format detection.
func createTestBinary(tris [][4][3]float32) []byte {
	buf := new(bytes.Buffer)
	header := make([]byte, 80)
	copy(header, "solid but actually binary")
	buf.Write(header)
	binary.Write(buf, binary.LittleEndian, uint32(len(tris)))
	for _, t := range tris {
		binary.Write(buf, binary.LittleEndian, t)
		binary.Write(buf, binary.LittleEndian, uint16(0))
	}
	return buf.Bytes()
}

func TestParseASCII(t *testing.T) {
	m, err := Parse([]byte(asciiCube))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if m.Name != "unit" {
		t.Errorf("expected name 'unit', got %q", m.Name)
	}
	if len(m.Triangles) != 2 {
		t.Fatalf("expected 2 triangles, got %d", len(m.Triangles))
	}
	if m.Triangles[0].V[1] != (mgl32.Vec3{1, 0, 1}) {
		t.Errorf("unexpected vertex %v", m.Triangles[0].V[1])
	}
	// Zero normals are computed from the winding.
	if m.Triangles[1].Normal != (mgl32.Vec3{0, 0, 1}) {
		t.Errorf("expected computed normal +Z, got %v", m.Triangles[1].Normal)
	}
}

func TestParseBinaryWithSolidHeader(t *testing.T) {
	data := createTestBinary([][4][3]float32{
		{{0, 0, 1}, {0, 0, 0}, {2, 0, 0}, {0, 3, 0}},
		{{0, 0, 1}, {-1, -1, 5}, {0, 0, 0}, {1, 1, 1}},
	})

	m, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(m.Triangles) != 2 {
		t.Fatalf("expected 2 triangles, got %d", len(m.Triangles))
	}

	min, max := m.Bounds()
	if min != (mgl32.Vec3{-1, -1, 0}) {
		t.Errorf("unexpected min %v", min)
	}
	if max != (mgl32.Vec3{2, 3, 5}) {
		t.Errorf("unexpected max %v", max)
	}
}

func TestParseBinaryTruncated(t *testing.T) {
	data := createTestBinary([][4][3]float32{{{0, 0, 1}, {0, 0, 0}, {1, 0, 0}, {0, 1, 0}}})
	// Drop the magic prefix so detection does not fall back to ASCII.
	copy(data, "binary")
	data = data[:len(data)-10]

	_, err := Parse(data)
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", err)
	}

	_, err = Parse([]byte{1, 2, 3})
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated for short data, got %v", err)
	}
}

func TestParseASCIIMalformed(t *testing.T) {
	bad := "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nendloop\nendfacet\nendsolid\n"
	_, err := Parse([]byte(bad))
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}

	bad = "solid x\nfacet normal 0 zero 1\n"
	_, err = Parse([]byte(bad))
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed for bad number, got %v", err)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.stl")
	if err := os.WriteFile(path, []byte(asciiCube), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	m, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if len(m.Triangles) != 2 {
		t.Errorf("expected 2 triangles, got %d", len(m.Triangles))
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.stl")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestBoundsEmpty(t *testing.T) {
	min, max := (&Mesh{}).Bounds()
	if min != (mgl32.Vec3{}) || max != (mgl32.Vec3{}) {
		t.Errorf("expected zero bounds, got %v %v", min, max)
	}
}
