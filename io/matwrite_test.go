package io

import (
	"bytes"
	"compress/zlib"
	"math"
	"os"
	"path/filepath"
	"testing"

	"encoding/binary"
)

// matWriter builds little-endian Level 5 MAT-files for the reader tests.
// It writes the same element layouts the Matlab characterization scripts
// produce, including small data elements and compressed elements.
type matWriter struct {
	buf bytes.Buffer
}

func newMATWriter() *matWriter {
	w := &matWriter{}
	header := make([]byte, matHeaderSize)
	copy(header, "MATLAB 5.0 MAT-file, characterization test fixture")
	for i := len("MATLAB 5.0 MAT-file, characterization test fixture"); i < 116; i++ {
		header[i] = ' '
	}
	binary.LittleEndian.PutUint16(header[124:], 0x0100)
	header[126], header[127] = 'I', 'M'
	w.buf.Write(header)
	return w
}

func (w *matWriter) bytes() []byte { return w.buf.Bytes() }

func (w *matWriter) writeFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, w.bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// element appends a tagged data element, using the small data element
// format when the body fits in the tag's second word.
func element(buf *bytes.Buffer, typ int, body []byte) {
	if len(body) <= 4 {
		var tag [8]byte
		binary.LittleEndian.PutUint32(
			tag[:], uint32(typ)|uint32(len(body))<<16)
		copy(tag[4:], body)
		buf.Write(tag[:])
		return
	}

	var tag [8]byte
	binary.LittleEndian.PutUint32(tag[:], uint32(typ))
	binary.LittleEndian.PutUint32(tag[4:], uint32(len(body)))
	buf.Write(tag[:])
	buf.Write(body)
	if rem := len(body) % 8; rem != 0 {
		buf.Write(make([]byte, 8-rem))
	}
}

func matrixHeader(buf *bytes.Buffer, class int, dims []int, name string) {
	flags := make([]byte, 8)
	binary.LittleEndian.PutUint32(flags, uint32(class))
	element(buf, miUint32, flags)

	dimsB := make([]byte, 4*len(dims))
	for i, d := range dims {
		binary.LittleEndian.PutUint32(dimsB[4*i:], uint32(d))
	}
	element(buf, miInt32, dimsB)
	element(buf, miInt8, []byte(name))
}

// numericMatrix returns the body of a miMATRIX element holding a double
// array in column-major order.
func numericMatrix(name string, dims []int, vals []float64) []byte {
	buf := &bytes.Buffer{}
	matrixHeader(buf, mxDouble, dims, name)

	data := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(data[8*i:], math.Float64bits(v))
	}
	element(buf, miDouble, data)
	return buf.Bytes()
}

func charMatrix(name, s string) []byte {
	buf := &bytes.Buffer{}
	matrixHeader(buf, mxChar, []int{1, len(s)}, name)
	element(buf, miUTF8, []byte(s))
	return buf.Bytes()
}

type matField struct {
	name string
	body []byte
}

// structMatrix returns the body of a miMATRIX element holding a 1x1 struct.
func structMatrix(name string, fields []matField) []byte {
	buf := &bytes.Buffer{}
	matrixHeader(buf, mxStruct, []int{1, 1}, name)

	fieldLen := 0
	for _, f := range fields {
		if len(f.name)+1 > fieldLen {
			fieldLen = len(f.name) + 1
		}
	}
	flB := make([]byte, 4)
	binary.LittleEndian.PutUint32(flB, uint32(fieldLen))
	element(buf, miInt32, flB)

	names := make([]byte, fieldLen*len(fields))
	for i, f := range fields {
		copy(names[i*fieldLen:], f.name)
	}
	element(buf, miInt8, names)

	for _, f := range fields {
		element(buf, miMatrix, f.body)
	}
	return buf.Bytes()
}

func (w *matWriter) matrix(body []byte) {
	element(&w.buf, miMatrix, body)
}

// compressed appends a miMATRIX element wrapped in a miCOMPRESSED element.
func (w *matWriter) compressed(t *testing.T, body []byte) {
	t.Helper()
	inner := &bytes.Buffer{}
	element(inner, miMatrix, body)

	z := &bytes.Buffer{}
	zw := zlib.NewWriter(z)
	if _, err := zw.Write(inner.Bytes()); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	element(&w.buf, miCompressed, z.Bytes())
}
