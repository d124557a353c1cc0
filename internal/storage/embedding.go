package storage

import (
	"encoding/binary"
	"math"
)

// EncodeEmbedding packs a vector as little-endian float32 values.
func EncodeEmbedding(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// DecodeEmbedding unpacks a blob written by EncodeEmbedding.
// ok is false when the blob length is not a multiple of four.
func DecodeEmbedding(buf []byte) (vec []float32, ok bool) {
	if len(buf)%4 != 0 {
		return nil, false
	}
	vec = make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec, true
}
