// Package audio provides PCM16 encoding and signal-metric helpers shared
// by the frame aggregator and STT client adapter.
package audio

import (
	"bytes"
	"encoding/binary"
)

const wavHeaderSize = 44

// EncodeWAV wraps PCM16 little-endian samples into a 44-byte RIFF/WAVE
// header followed by the raw samples; nil or empty samples yield the
// header alone. Input validity (sane sampleRate/channels) is a
// precondition; there is no error path.
func EncodeWAV(samples []int16, sampleRate, channels int) []byte {
	dataSize := len(samples) * 2
	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+dataSize))

	byteRate := sampleRate * channels * 2
	blockAlign := channels * 2

	buf.WriteString("RIFF")
	writeUint32(buf, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	writeUint32(buf, 16) // fmt chunk size
	writeUint16(buf, 1)  // PCM format
	writeUint16(buf, uint16(channels))
	writeUint32(buf, uint32(sampleRate))
	writeUint32(buf, uint32(byteRate))
	writeUint16(buf, uint16(blockAlign))
	writeUint16(buf, 16) // bits per sample

	buf.WriteString("data")
	writeUint32(buf, uint32(dataSize))

	for _, s := range samples {
		writeUint16(buf, uint16(s))
	}

	return buf.Bytes()
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}
