package fuzle

import (
	"fmt"

	"github.com/go-audio/audio"
)

// Mode selects how the start of the RIFF stream is located
type Mode int

const (
	// ModeAuto uses ModePrefixed when the buffer starts with the FUZE magic, ModeScan otherwise
	ModeAuto Mode = iota
	// ModePrefixed skips the FUZE preamble and its lip-sync prefix
	ModePrefixed
	// ModeScan searches for the first "RIFF" signature anywhere in the buffer
	ModeScan
)

var modeNames = map[Mode]string{
	ModeAuto:     "auto",
	ModePrefixed: "prefixed",
	ModeScan:     "scan",
}

// String returns the flag name of the mode
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode converts a flag value ("auto", "prefixed", "scan") to a Mode
func ParseMode(s string) (Mode, error) {
	for mode, name := range modeNames {
		if name == s {
			return mode, nil
		}
	}
	return ModeAuto, fmt.Errorf("unknown mode %q (expected auto, prefixed or scan)", s)
}

// Header holds the xWMA header fields, from the RIFF chunk size up to the dpds table
type Header struct {
	RIFFSize        uint32   `json:"riff_size" yaml:"riff_size"`                 // RIFF chunk size, not validated
	FormatChunkSize uint32   `json:"format_chunk_size" yaml:"format_chunk_size"` // size of the "fmt " chunk, not validated
	FormatCode      uint16   `json:"format_code" yaml:"format_code"`             // 0x0161 (WMAv2) or 0x0162 (WMA Pro), not validated
	Channels        uint16   `json:"channels" yaml:"channels"`
	SampleRate      uint32   `json:"sample_rate" yaml:"sample_rate"`
	ByteRate        uint32   `json:"byte_rate" yaml:"byte_rate"`
	BlockAlign      uint16   `json:"block_align" yaml:"block_align"`
	BitsPerSample   uint16   `json:"bits_per_sample" yaml:"bits_per_sample"`
	ExtraSize       uint16   `json:"extra_size" yaml:"extra_size"`               // should be 0
	PacketTableSize uint32   `json:"packet_table_size" yaml:"packet_table_size"` // length of the dpds chunk in bytes
	PacketTable     []uint32 `json:"packet_table" yaml:"packet_table,flow"`
}

// DecodedBytes returns the last packet table entry, the total size of the decoded PCM stream
func (h *Header) DecodedBytes() uint32 {
	if len(h.PacketTable) == 0 {
		return 0
	}
	return h.PacketTable[len(h.PacketTable)-1]
}

// Format returns the PCM format the stream decodes to
func (h *Header) Format() *audio.Format {
	return &audio.Format{
		NumChannels: int(h.Channels),
		SampleRate:  int(h.SampleRate),
	}
}

// File is the result of parsing a voice file
type File struct {
	Mode       Mode // strategy that located the RIFF stream
	LipOffset  int  // start of the lip-sync data, prefixed mode only
	LipSize    int  // length of the lip-sync data, prefixed mode only
	RIFFOffset int  // offset of the "RIFF" signature
	Header     Header
}

// Duration returns the playback duration of the stream in seconds
func (f *File) Duration() (float64, error) {
	return f.Header.Duration()
}

// Lip returns the lip-sync prefix of buf, or nil when there is none
func (f *File) Lip(buf []byte) []byte {
	if f.LipSize == 0 || f.LipOffset+f.LipSize > len(buf) {
		return nil
	}
	return buf[f.LipOffset : f.LipOffset+f.LipSize]
}

// RIFF returns the RIFF stream of buf, from its signature to the end of the buffer
func (f *File) RIFF(buf []byte) []byte {
	if f.RIFFOffset > len(buf) {
		return nil
	}
	return buf[f.RIFFOffset:]
}
