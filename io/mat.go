/*Package io imports device characterization data into table.Table values.

Two on-disk formats are supported: Level 5 MAT-files as written by circuit
simulator characterization scripts, and a flat whitespace-delimited text
format. Both loaders apply the same schema: four sweep axes, the seventeen
tabulated output variables, and a handful of pass-through info fields.
*/
package io

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"encoding/binary"

	"github.com/phil-mansfield/gmid/table"
)

var (
	// ErrFormat indicates a file which cannot be decoded as characterization
	// data.
	ErrFormat = errors.New("io: malformed characterization file")
	// ErrNoRecord indicates a MAT-file which does not contain exactly one
	// top-level record of characterization data.
	ErrNoRecord = errors.New(
		"io: expected exactly one characterization record in MAT-file")
)

// MAT-file data element types.
const (
	miInt8 = iota + 1
	miUint8
	miInt16
	miUint16
	miInt32
	miUint32
	miSingle
	_
	miDouble
	_
	_
	miInt64
	miUint64
	miMatrix
	miCompressed
	miUTF8
	miUTF16
)

// MAT-file array classes.
const (
	mxCell = iota + 1
	mxStruct
	mxObject
	mxChar
	mxSparse
	mxDouble
	mxSingle
	mxInt8
	mxUint8
	mxInt16
	mxUint16
	mxInt32
	mxUint32
	mxInt64
	mxUint64
)

const matHeaderSize = 128

// matArray is one decoded MAT-file array. Numeric contents are stored as
// float64 in MATLAB's column-major element order.
type matArray struct {
	name   string
	class  int
	dims   []int
	nums   []float64
	str    string
	fields map[string]*matArray
}

// ReadMAT imports a device characterization table from a Level 5 MAT-file.
// The file must contain exactly one top-level struct record (other top-level
// variables are treated as metadata and ignored); that record must hold the
// four sweep axes, the output variables shaped per the axes, and may hold
// the INFO, CORNER, TEMP, and NFING pass-through fields.
func ReadMAT(path string) (*table.Table, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(buf) < matHeaderSize {
		return nil, fmt.Errorf("%w: %d byte file is too short for the "+
			"128 byte header", ErrFormat, len(buf))
	}

	var order binary.ByteOrder
	switch string(buf[126:128]) {
	case "IM":
		order = binary.LittleEndian
	case "MI":
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: bad endianness indicator %q",
			ErrFormat, buf[126:128])
	}

	r := &matReader{buf: buf[matHeaderSize:], order: order}
	var record *matArray
	records := 0
	for {
		typ, body, err := r.next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		if typ == miCompressed {
			typ, body, err = inflate(body, order)
			if err != nil {
				return nil, err
			}
		}
		if typ != miMatrix {
			continue
		}

		arr, err := parseMatrix(body, order)
		if err != nil {
			return nil, err
		}
		if arr.class == mxStruct {
			record = arr
			records++
		}
	}

	if records != 1 {
		return nil, fmt.Errorf("%w: found %d", ErrNoRecord, records)
	}
	return tableFromRecord(record)
}

// matReader walks a sequence of MAT-file data elements, handling both the
// standard tag layout and the packed small data element format.
type matReader struct {
	buf   []byte
	off   int
	order binary.ByteOrder
}

func (r *matReader) next() (typ int, body []byte, err error) {
	if r.off >= len(r.buf) {
		return 0, nil, io.EOF
	}
	if r.off+8 > len(r.buf) {
		return 0, nil, fmt.Errorf("%w: truncated element tag at offset %d",
			ErrFormat, r.off)
	}

	t := r.order.Uint32(r.buf[r.off:])
	if t>>16 != 0 {
		// Small data element: size and type packed into the first word,
		// data in the second.
		n := int(t >> 16)
		if n > 4 {
			return 0, nil, fmt.Errorf(
				"%w: small element of %d bytes at offset %d",
				ErrFormat, n, r.off,
			)
		}
		body = r.buf[r.off+4 : r.off+4+n]
		r.off += 8
		return int(t & 0xffff), body, nil
	}

	n := int(r.order.Uint32(r.buf[r.off+4:]))
	if r.off+8+n > len(r.buf) {
		return 0, nil, fmt.Errorf(
			"%w: element of %d bytes at offset %d overruns the file",
			ErrFormat, n, r.off,
		)
	}
	body = r.buf[r.off+8 : r.off+8+n]

	// Elements are padded to 8 byte boundaries.
	r.off += 8 + n
	if rem := r.off % 8; rem != 0 {
		r.off += 8 - rem
	}
	return int(t), body, nil
}

// inflate decompresses a miCOMPRESSED element, which wraps exactly one
// complete inner element.
func inflate(body []byte, order binary.ByteOrder) (int, []byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: bad compressed element: %v", ErrFormat, err)
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: bad compressed element: %v", ErrFormat, err)
	}

	r := &matReader{buf: raw, order: order}
	typ, inner, err := r.next()
	if err != nil {
		return 0, nil, err
	}
	return typ, inner, nil
}

// parseMatrix decodes a miMATRIX element body. Classes with no use in
// characterization files (cells, sparse matrices, objects) decode to an
// empty array so that unexpected metadata does not abort the import.
func parseMatrix(body []byte, order binary.ByteOrder) (*matArray, error) {
	r := &matReader{buf: body, order: order}

	typ, flags, err := r.next()
	if err != nil {
		return nil, fmt.Errorf("%w: array missing flags element", ErrFormat)
	}
	if typ != miUint32 || len(flags) < 8 {
		return nil, fmt.Errorf("%w: bad array flags element", ErrFormat)
	}
	class := int(order.Uint32(flags) & 0xff)

	typ, dimsB, err := r.next()
	if err != nil || typ != miInt32 {
		return nil, fmt.Errorf("%w: bad array dimensions element", ErrFormat)
	}
	dims := make([]int, len(dimsB)/4)
	for i := range dims {
		dims[i] = int(int32(order.Uint32(dimsB[4*i:])))
	}

	typ, nameB, err := r.next()
	if err != nil || typ != miInt8 {
		return nil, fmt.Errorf("%w: bad array name element", ErrFormat)
	}

	arr := &matArray{name: string(nameB), class: class, dims: dims}
	switch class {
	case mxDouble, mxSingle, mxInt8, mxUint8, mxInt16, mxUint16,
		mxInt32, mxUint32, mxInt64, mxUint64:

		typ, data, err := r.next()
		if err != nil {
			return nil, fmt.Errorf("%w: numeric array %q missing data",
				ErrFormat, arr.name)
		}
		// A second data element holds the imaginary part of a complex
		// array; characterization data is real, so it is ignored.
		if arr.nums, err = decodeNumeric(typ, data, order); err != nil {
			return nil, err
		}
	case mxChar:
		typ, data, err := r.next()
		if err != nil {
			return nil, fmt.Errorf("%w: char array %q missing data",
				ErrFormat, arr.name)
		}
		if arr.str, err = decodeChars(typ, data, order); err != nil {
			return nil, err
		}
	case mxStruct:
		if err := parseStruct(arr, r, order); err != nil {
			return nil, err
		}
	}
	return arr, nil
}

func parseStruct(arr *matArray, r *matReader, order binary.ByteOrder) error {
	n := 1
	for _, d := range arr.dims {
		n *= d
	}
	if n != 1 {
		return fmt.Errorf("%w: struct array %q has %d elements; only "+
			"scalar structs are supported", ErrFormat, arr.name, n)
	}

	typ, flB, err := r.next()
	if err != nil || typ != miInt32 || len(flB) != 4 {
		return fmt.Errorf("%w: struct %q missing field name length",
			ErrFormat, arr.name)
	}
	fieldLen := int(int32(order.Uint32(flB)))
	if fieldLen <= 0 {
		return fmt.Errorf("%w: struct %q has field name length %d",
			ErrFormat, arr.name, fieldLen)
	}

	typ, namesB, err := r.next()
	if err != nil || typ != miInt8 || len(namesB)%fieldLen != 0 {
		return fmt.Errorf("%w: struct %q has a bad field name element",
			ErrFormat, arr.name)
	}
	names := make([]string, len(namesB)/fieldLen)
	for i := range names {
		names[i] = string(bytes.TrimRight(
			namesB[i*fieldLen:(i+1)*fieldLen], "\x00"))
	}

	arr.fields = make(map[string]*matArray, len(names))
	for _, name := range names {
		typ, body, err := r.next()
		if err != nil || typ != miMatrix {
			return fmt.Errorf("%w: struct %q missing field %q",
				ErrFormat, arr.name, name)
		}
		field, err := parseMatrix(body, order)
		if err != nil {
			return err
		}
		arr.fields[name] = field
	}
	return nil
}

func decodeNumeric(typ int, b []byte, order binary.ByteOrder) ([]float64, error) {
	switch typ {
	case miDouble:
		out := make([]float64, len(b)/8)
		for i := range out {
			out[i] = math.Float64frombits(order.Uint64(b[8*i:]))
		}
		return out, nil
	case miSingle:
		out := make([]float64, len(b)/4)
		for i := range out {
			out[i] = float64(math.Float32frombits(order.Uint32(b[4*i:])))
		}
		return out, nil
	case miInt8:
		out := make([]float64, len(b))
		for i := range out {
			out[i] = float64(int8(b[i]))
		}
		return out, nil
	case miUint8:
		out := make([]float64, len(b))
		for i := range out {
			out[i] = float64(b[i])
		}
		return out, nil
	case miInt16:
		out := make([]float64, len(b)/2)
		for i := range out {
			out[i] = float64(int16(order.Uint16(b[2*i:])))
		}
		return out, nil
	case miUint16:
		out := make([]float64, len(b)/2)
		for i := range out {
			out[i] = float64(order.Uint16(b[2*i:]))
		}
		return out, nil
	case miInt32:
		out := make([]float64, len(b)/4)
		for i := range out {
			out[i] = float64(int32(order.Uint32(b[4*i:])))
		}
		return out, nil
	case miUint32:
		out := make([]float64, len(b)/4)
		for i := range out {
			out[i] = float64(order.Uint32(b[4*i:]))
		}
		return out, nil
	case miInt64:
		out := make([]float64, len(b)/8)
		for i := range out {
			out[i] = float64(int64(order.Uint64(b[8*i:])))
		}
		return out, nil
	case miUint64:
		out := make([]float64, len(b)/8)
		for i := range out {
			out[i] = float64(order.Uint64(b[8*i:]))
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: numeric data stored as element type %d",
		ErrFormat, typ)
}

func decodeChars(typ int, b []byte, order binary.ByteOrder) (string, error) {
	switch typ {
	case miUTF8, miInt8, miUint8:
		return string(b), nil
	case miUint16, miUTF16:
		runes := make([]rune, len(b)/2)
		for i := range runes {
			runes[i] = rune(order.Uint16(b[2*i:]))
		}
		return string(runes), nil
	}
	return "", fmt.Errorf("%w: char data stored as element type %d",
		ErrFormat, typ)
}

// tableFromRecord assembles a table.Table from a decoded struct record,
// transposing the column-major MATLAB arrays to the row-major layout the
// interpolators use.
func tableFromRecord(rec *matArray) (*table.Table, error) {
	l, err := recordVec(rec, "L")
	if err != nil {
		return nil, err
	}
	vgs, err := recordVec(rec, "VGS")
	if err != nil {
		return nil, err
	}
	vds, err := recordVec(rec, "VDS")
	if err != nil {
		return nil, err
	}
	vsb, err := recordVec(rec, "VSB")
	if err != nil {
		return nil, err
	}

	size := len(l) * len(vgs) * len(vds) * len(vsb)
	data := make(map[string][]float64, len(table.OutVars))
	for _, name := range table.OutVars {
		field, ok := rec.fields[name]
		if !ok || field.nums == nil {
			return nil, fmt.Errorf("%w: record is missing output variable %q",
				ErrFormat, name)
		}
		switch {
		case len(field.nums) == size:
			data[name] = colMajorToRowMajor(
				field.nums, len(l), len(vgs), len(vds), len(vsb))
		case name == "W" && (len(field.nums) == 1 ||
			len(field.nums) == len(vsb)):
			// Scalar or per-VSB widths are broadcast across the grid by
			// table.New.
			data[name] = field.nums
		default:
			return nil, fmt.Errorf(
				"%w: output variable %q has %d values, but the grid has %d nodes",
				ErrFormat, name, len(field.nums), size,
			)
		}
	}

	info := table.Info{}
	if f, ok := rec.fields["INFO"]; ok {
		info.Desc = f.str
	}
	if f, ok := rec.fields["CORNER"]; ok {
		info.Corner = f.str
	}
	if f, ok := rec.fields["TEMP"]; ok && len(f.nums) == 1 {
		info.Temp = f.nums[0]
	}
	if f, ok := rec.fields["NFING"]; ok && len(f.nums) == 1 {
		info.NFing = f.nums[0]
	}

	tbl, err := table.New(l, vgs, vds, vsb, data, info)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return tbl, nil
}

func recordVec(rec *matArray, name string) ([]float64, error) {
	field, ok := rec.fields[name]
	if !ok || len(field.nums) == 0 {
		return nil, fmt.Errorf("%w: record is missing sweep axis %q",
			ErrFormat, name)
	}
	return field.nums, nil
}

func colMajorToRowMajor(in []float64, nl, ng, nd, nb int) []float64 {
	out := make([]float64, len(in))
	idx := 0
	for il := 0; il < nl; il++ {
		for ig := 0; ig < ng; ig++ {
			for id := 0; id < nd; id++ {
				for ib := 0; ib < nb; ib++ {
					out[idx] = in[il+nl*(ig+ng*(id+nd*ib))]
					idx++
				}
			}
		}
	}
	return out
}
