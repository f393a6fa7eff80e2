package vecstore

import (
	"encoding/binary"
	"math"
)

// encodeVector 将 float32 向量按小端序编码为 BLOB，保证逐位往返一致
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeVector encodeVector 的逆操作，长度不足 4 字节的尾部被丢弃
func decodeVector(data []byte) []float32 {
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec
}
