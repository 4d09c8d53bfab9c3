package dataset

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/kcluster/internal/conv"
	"github.com/hupe1980/kcluster/internal/hash"
)

// Header layout (little endian):
//
//	0  magic "KCM1"
//	4  version     uint16
//	6  compression uint8
//	7  flags       uint8
//	8  rows        uint32
//	12 cols        uint32
//	16 categories  uint32
//	20 block size  uint32
//	24 payload len uint64
//	32 blocks...
//	   crc32c of the raw payload uint32
const (
	magic      = "KCM1"
	version    = 1
	headerSize = 32

	flagLabels = 1 << 0

	maxCells = 1 << 32

	maxBlockSize = 64 << 20

	// DefaultBlockSize is the raw size of a compressed block.
	DefaultBlockSize = 256 * 1024
)

var (
	// ErrFormat is returned for blobs that are not valid KCM1 data.
	ErrFormat = errors.New("dataset: invalid format")
	// ErrChecksum is returned when the payload checksum does not match.
	ErrChecksum = errors.New("dataset: checksum mismatch")
)

// Marshal encodes ds as a KCM1 blob.
func Marshal(ds *Dataset, c Compression) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, ds, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes ds to w as a KCM1 blob.
func Encode(w io.Writer, ds *Dataset, c Compression) error {
	if err := ds.validate(); err != nil {
		return err
	}
	switch c {
	case CompressionNone, CompressionLZ4, CompressionZSTD:
	default:
		return fmt.Errorf("dataset: unknown compression %s", c)
	}

	rows, cols := ds.Features.Dims()
	var dims [3]uint32
	for i, v := range []int{rows, cols, ds.Categories} {
		u, err := conv.IntToUint32(v)
		if err != nil {
			return fmt.Errorf("dataset: header field: %w", err)
		}
		dims[i] = u
	}

	raw := make([]byte, 0, rows*cols*8+len(ds.Labels)*4)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			raw = binary.LittleEndian.AppendUint64(raw, math.Float64bits(ds.Features.At(i, j)))
		}
	}
	for _, l := range ds.Labels {
		raw = binary.LittleEndian.AppendUint32(raw, uint32(int32(l)))
	}

	var payload []byte
	for off := 0; off < len(raw); off += DefaultBlockSize {
		end := min(off+DefaultBlockSize, len(raw))
		var err error
		if payload, err = appendBlock(payload, raw[off:end], c); err != nil {
			return err
		}
	}

	var flags uint8
	if ds.Labels != nil {
		flags |= flagLabels
	}

	hdr := make([]byte, headerSize)
	copy(hdr, magic)
	binary.LittleEndian.PutUint16(hdr[4:], version)
	hdr[6] = uint8(c)
	hdr[7] = flags
	binary.LittleEndian.PutUint32(hdr[8:], dims[0])
	binary.LittleEndian.PutUint32(hdr[12:], dims[1])
	binary.LittleEndian.PutUint32(hdr[16:], dims[2])
	binary.LittleEndian.PutUint32(hdr[20:], DefaultBlockSize)
	binary.LittleEndian.PutUint64(hdr[24:], uint64(len(payload)))

	if _, err := w.Write(hdr); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	var sum [4]byte
	binary.LittleEndian.PutUint32(sum[:], hash.CRC32C(raw))
	_, err := w.Write(sum[:])
	return err
}

// Unmarshal decodes a KCM1 blob.
func Unmarshal(data []byte) (*Dataset, error) {
	if len(data) < headerSize+4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrFormat, len(data))
	}
	if string(data[:4]) != magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrFormat, data[:4])
	}
	if v := binary.LittleEndian.Uint16(data[4:]); v != version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrFormat, v)
	}

	c := Compression(data[6])
	flags := data[7]
	rows := int(binary.LittleEndian.Uint32(data[8:]))
	cols := int(binary.LittleEndian.Uint32(data[12:]))
	categories := int(binary.LittleEndian.Uint32(data[16:]))
	blockSize := int(binary.LittleEndian.Uint32(data[20:]))
	payloadLen, err := conv.Uint64ToInt(binary.LittleEndian.Uint64(data[24:]))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	if len(data)-headerSize-4 != payloadLen {
		return nil, fmt.Errorf("%w: payload is %d bytes, header says %d", ErrFormat, len(data)-headerSize-4, payloadLen)
	}
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("%w: empty matrix %dx%d", ErrFormat, rows, cols)
	}
	if uint64(rows)*uint64(cols) > maxCells {
		return nil, fmt.Errorf("%w: matrix %dx%d too large", ErrFormat, rows, cols)
	}
	if blockSize == 0 || blockSize > maxBlockSize {
		return nil, fmt.Errorf("%w: block size %d", ErrFormat, blockSize)
	}

	rawSize := rows * cols * 8
	if flags&flagLabels != 0 {
		rawSize += rows * 4
	}

	payload := data[headerSize : headerSize+payloadLen]
	raw, err := readBlocks(payload, c, rawSize, blockSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if len(raw) != rawSize {
		return nil, fmt.Errorf("%w: payload decodes to %d bytes, want %d", ErrFormat, len(raw), rawSize)
	}
	if want := binary.LittleEndian.Uint32(data[headerSize+payloadLen:]); hash.CRC32C(raw) != want {
		return nil, ErrChecksum
	}

	values := make([]float64, rows*cols)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
	}

	ds := &Dataset{
		Features:   mat.NewDense(rows, cols, values),
		Categories: categories,
	}
	if flags&flagLabels != 0 {
		labels := raw[rows*cols*8:]
		ds.Labels = make([]int, rows)
		for i := range ds.Labels {
			ds.Labels[i] = int(int32(binary.LittleEndian.Uint32(labels[i*4:])))
		}
	}
	if err := ds.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return ds, nil
}

// Decode reads a whole KCM1 blob from r.
func Decode(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}
