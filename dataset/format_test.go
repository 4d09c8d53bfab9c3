package dataset

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func sparseDataset(t *testing.T, rows, cols, categories int) *Dataset {
	t.Helper()

	rng := rand.New(rand.NewSource(1))
	features := mat.NewDense(rows, cols, nil)
	labels := make([]int, rows)
	for i := 0; i < rows; i++ {
		labels[i] = i % categories
		for j := 0; j < cols; j++ {
			if rng.Intn(10) == 0 {
				features.Set(i, j, rng.Float64())
			}
		}
	}
	ds, err := New(features, labels)
	require.NoError(t, err)
	return ds
}

func TestEncodeDecode(t *testing.T) {
	ds := sparseDataset(t, 300, 400, 7)

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, ds, c))

			if c != CompressionNone {
				assert.Less(t, buf.Len(), 300*400*8, "sparse data must compress")
			}

			got, err := Decode(&buf)
			require.NoError(t, err)
			assert.True(t, mat.Equal(ds.Features, got.Features))
			assert.Equal(t, ds.Labels, got.Labels)
			assert.Equal(t, 7, got.Categories)
		})
	}
}

func TestEncodeUnlabeled(t *testing.T) {
	ds, err := New(mat.NewDense(2, 2, []float64{1, 2, 3, 4}), nil)
	require.NoError(t, err)

	data, err := Marshal(ds, CompressionZSTD)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Nil(t, got.Labels)
	assert.Equal(t, []float64{1, 2, 3, 4}, got.Features.RawMatrix().Data)
}

func TestDecodeCorrupt(t *testing.T) {
	ds := sparseDataset(t, 10, 10, 2)
	data, err := Marshal(ds, CompressionLZ4)
	require.NoError(t, err)

	t.Run("Short", func(t *testing.T) {
		_, err := Unmarshal(data[:10])
		assert.ErrorIs(t, err, ErrFormat)
	})

	t.Run("Magic", func(t *testing.T) {
		bad := bytes.Clone(data)
		bad[0] = 'X'
		_, err := Unmarshal(bad)
		assert.ErrorIs(t, err, ErrFormat)
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := Unmarshal(data[:len(data)-1])
		assert.ErrorIs(t, err, ErrFormat)
	})

	t.Run("Checksum", func(t *testing.T) {
		bad := bytes.Clone(data)
		bad[len(bad)-1] ^= 0xff
		_, err := Unmarshal(bad)
		assert.ErrorIs(t, err, ErrChecksum)
	})
}

// craftedBlob returns a KCM1 blob with the given header fields, payload and a
// zero checksum.
func craftedBlob(c Compression, rows, cols, blockSize uint32, payload []byte) []byte {
	data := make([]byte, headerSize, headerSize+len(payload)+4)
	copy(data, magic)
	binary.LittleEndian.PutUint16(data[4:], version)
	data[6] = uint8(c)
	binary.LittleEndian.PutUint32(data[8:], rows)
	binary.LittleEndian.PutUint32(data[12:], cols)
	binary.LittleEndian.PutUint32(data[20:], blockSize)
	binary.LittleEndian.PutUint64(data[24:], uint64(len(payload)))
	data = append(data, payload...)
	return append(data, 0, 0, 0, 0)
}

func TestDecodeOversizedHeader(t *testing.T) {
	block := func(raw, stored uint32, data []byte) []byte {
		b := binary.LittleEndian.AppendUint32(nil, raw)
		b = binary.LittleEndian.AppendUint32(b, stored)
		return append(b, data...)
	}

	tests := []struct {
		name string
		blob []byte
	}{
		{name: "NoBlocks", blob: craftedBlob(CompressionNone, 1<<16, 1<<16, DefaultBlockSize, nil)},
		{name: "NoBlocksZSTD", blob: craftedBlob(CompressionZSTD, 1<<16, 1<<16, DefaultBlockSize, nil)},
		{name: "ShortRawBlock", blob: craftedBlob(CompressionNone, 1<<16, 1<<16, DefaultBlockSize, block(DefaultBlockSize, 0, make([]byte, 16)))},
		{name: "BlockLargerThanBlockSize", blob: craftedBlob(CompressionLZ4, 1<<16, 1<<16, DefaultBlockSize, block(DefaultBlockSize+1, 4, make([]byte, 4)))},
		{name: "BlocksShortOfMatrix", blob: craftedBlob(CompressionNone, 4, 4, DefaultBlockSize, block(8, 0, make([]byte, 8)))},
		{name: "TinyCompressedBlock", blob: craftedBlob(CompressionLZ4, 1<<15, 1, DefaultBlockSize, block(DefaultBlockSize, 4, []byte{0xff, 0xff, 0xff, 0xff}))},
		{name: "ZeroBlockSize", blob: craftedBlob(CompressionNone, 1, 1, 0, block(8, 0, make([]byte, 8)))},
		{name: "HugeBlockSize", blob: craftedBlob(CompressionNone, 1, 1, 1<<30, block(8, 0, make([]byte, 8)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal(tt.blob)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCompression("gzip")
	assert.Error(t, err)
}
