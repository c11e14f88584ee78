// Package wav frames raw 16-bit mono PCM in a canonical RIFF/WAVE container.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

const (
	// HeaderSize is the size of the canonical PCM header.
	HeaderSize = 44

	// DefaultSampleRate is used when a MIME type carries no usable rate.
	DefaultSampleRate = 24000

	formatPCM     = 1
	channels      = 1
	bitsPerSample = 16
	bytesPerFrame = channels * bitsPerSample / 8
)

var (
	ErrShortHeader = errors.New("wav: buffer shorter than header")
	ErrNotWAV      = errors.New("wav: missing RIFF/WAVE markers")
	ErrUnsupported = errors.New("wav: only 16-bit mono PCM is supported")

	rateParam = regexp.MustCompile(`rate=(\d+)`)
)

// Header holds the fields of a canonical 44-byte PCM header.
type Header struct {
	RIFFSize      uint32
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataSize      uint32
}

// Samples returns the number of samples declared by the data chunk.
func (h Header) Samples() int {
	if h.BlockAlign == 0 {
		return 0
	}
	return int(h.DataSize) / int(h.BlockAlign)
}

// Encode wraps samples in a WAV container at sampleRate.
func Encode(samples []int16, sampleRate int) []byte {
	dataSize := uint32(len(samples) * bytesPerFrame)
	buf := make([]byte, HeaderSize+int(dataSize))

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], 36+dataSize)
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], formatPCM)
	binary.LittleEndian.PutUint16(buf[22:24], channels)
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*bytesPerFrame))
	binary.LittleEndian.PutUint16(buf[32:34], bytesPerFrame)
	binary.LittleEndian.PutUint16(buf[34:36], bitsPerSample)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], dataSize)

	off := HeaderSize
	for _, s := range samples {
		binary.LittleEndian.PutUint16(buf[off:], uint16(s))
		off += bytesPerFrame
	}
	return buf
}

// Decode reads back a buffer produced by Encode.
func Decode(b []byte) (Header, []int16, error) {
	var h Header
	if len(b) < HeaderSize {
		return h, nil, ErrShortHeader
	}
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" ||
		string(b[12:16]) != "fmt " || string(b[36:40]) != "data" {
		return h, nil, ErrNotWAV
	}

	h = Header{
		RIFFSize:      binary.LittleEndian.Uint32(b[4:8]),
		AudioFormat:   binary.LittleEndian.Uint16(b[20:22]),
		Channels:      binary.LittleEndian.Uint16(b[22:24]),
		SampleRate:    binary.LittleEndian.Uint32(b[24:28]),
		ByteRate:      binary.LittleEndian.Uint32(b[28:32]),
		BlockAlign:    binary.LittleEndian.Uint16(b[32:34]),
		BitsPerSample: binary.LittleEndian.Uint16(b[34:36]),
		DataSize:      binary.LittleEndian.Uint32(b[40:44]),
	}
	if h.AudioFormat != formatPCM || h.Channels != channels || h.BitsPerSample != bitsPerSample {
		return h, nil, ErrUnsupported
	}

	data := b[HeaderSize:]
	if uint32(len(data)) < h.DataSize {
		return h, nil, fmt.Errorf("wav: data chunk declares %d bytes, have %d", h.DataSize, len(data))
	}
	return h, SamplesFromPCM(data[:h.DataSize]), nil
}

// SamplesFromPCM converts little-endian 16-bit PCM bytes into samples.
// A trailing odd byte is dropped.
func SamplesFromPCM(raw []byte) []int16 {
	n := len(raw) / bytesPerFrame
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[i*bytesPerFrame:]))
	}
	return samples
}

// SampleRateFromMIME extracts the rate parameter of a MIME type such as
// "audio/L16;codec=pcm;rate=24000", falling back to DefaultSampleRate.
func SampleRateFromMIME(mimeType string) int {
	m := rateParam.FindStringSubmatch(mimeType)
	if m == nil {
		return DefaultSampleRate
	}
	rate, err := strconv.Atoi(m[1])
	if err != nil || rate <= 0 {
		return DefaultSampleRate
	}
	return rate
}
