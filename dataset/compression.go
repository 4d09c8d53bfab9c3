package dataset

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the block compression of a KCM1 payload.
type Compression uint8

const (
	// CompressionNone stores blocks uncompressed.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses zstd (better ratio).
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression maps "none", "lz4" or "zstd" to a Compression.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("dataset: unknown compression %q", s)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Block format: [raw size uint32][stored size uint32][data].
// A stored size of 0 means the block is kept uncompressed.
const blockHeaderSize = 8

// appendBlock compresses data and appends the framed block to dst.
// Blocks that do not shrink by at least 10% are stored uncompressed.
func appendBlock(dst, data []byte, c Compression) ([]byte, error) {
	var compressed []byte

	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	}

	var hdr [blockHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(len(data)))

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		dst = append(dst, hdr[:]...)
		return append(dst, data...), nil
	}

	binary.LittleEndian.PutUint32(hdr[4:], uint32(len(compressed)))
	dst = append(dst, hdr[:]...)
	return append(dst, compressed...), nil
}

type blockRef struct {
	raw    int
	stored int
	data   []byte
}

// scanBlocks walks the block headers of data without decoding anything. The
// raw sizes must add up to exactly rawSize and no block may claim more than
// blockSize raw bytes.
func scanBlocks(data []byte, rawSize, blockSize int) ([]blockRef, error) {
	var (
		blocks []blockRef
		total  int
	)
	for len(data) > 0 {
		if len(data) < blockHeaderSize {
			return nil, errors.New("dataset: block too small for header")
		}
		raw := int(binary.LittleEndian.Uint32(data[0:]))
		stored := int(binary.LittleEndian.Uint32(data[4:]))
		data = data[blockHeaderSize:]

		if raw == 0 || raw > blockSize {
			return nil, fmt.Errorf("dataset: block of %d raw bytes, block size %d", raw, blockSize)
		}
		if total += raw; total > rawSize {
			return nil, errors.New("dataset: block exceeds payload size")
		}

		n := stored
		if stored == 0 {
			n = raw
		}
		if len(data) < n {
			return nil, errors.New("dataset: block data too small")
		}
		blocks = append(blocks, blockRef{raw: raw, stored: stored, data: data[:n]})
		data = data[n:]
	}
	if total != rawSize {
		return nil, fmt.Errorf("dataset: blocks hold %d raw bytes, want %d", total, rawSize)
	}
	return blocks, nil
}

// readBlocks decodes the framed blocks of data into rawSize bytes. The output
// is only allocated after the block headers were checked against the
// payload, and it grows with the blocks actually decoded.
func readBlocks(data []byte, c Compression, rawSize, blockSize int) ([]byte, error) {
	blocks, err := scanBlocks(data, rawSize, blockSize)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, min(rawSize, len(data)))
	for _, b := range blocks {
		if b.stored == 0 {
			out = append(out, b.data...)
			continue
		}

		switch c {
		case CompressionLZ4:
			out = slices.Grow(out, b.raw)
			dst := out[len(out) : len(out)+b.raw]
			n, err := lz4.UncompressBlock(b.data, dst)
			if err != nil {
				return nil, err
			}
			if n != b.raw {
				return nil, errors.New("dataset: decompressed size mismatch")
			}
			out = out[:len(out)+b.raw]
		case CompressionZSTD:
			dec := getZstdDecoder()
			decoded, err := dec.DecodeAll(b.data, out)
			zstdDecoderPool.Put(dec)
			if err != nil {
				return nil, err
			}
			if len(decoded) != len(out)+b.raw {
				return nil, errors.New("dataset: decompressed size mismatch")
			}
			out = decoded
		default:
			return nil, fmt.Errorf("dataset: compressed block with compression %s", c)
		}
	}
	return out, nil
}
