package container

// XWMAHeader represents the fixed part of an xWMA stream, up to the packet table entries
type XWMAHeader struct {
	// RIFF header
	RiffID   [4]byte // "RIFF"
	RiffSize uint32  // 4 + (8 + FmtSize) + (8 + DpdsSize) + (8 + DataSize)
	XwmaID   [4]byte // "XWMA"

	// fmt sub-chunk
	FmtID         [4]byte // "fmt "
	FmtSize       uint32  // 18 for xWMA
	FormatTag     uint16  // 0x0161 WMAv2, 0x0162 WMA Pro
	NumChannels   uint16  // 1 for mono, 2 for stereo
	SampleRate    uint32  // e.g., 44100
	ByteRate      uint32  // average bytes per second of the compressed stream
	BlockAlign    uint16  // packet size
	BitsPerSample uint16  // of the decoded PCM, usually 16
	ExtSize       uint16  // 0

	// dpds sub-chunk, followed by DpdsSize/4 uint32 entries
	DpdsID   [4]byte // "dpds"
	DpdsSize uint32
}

// FUZHeader represents the preamble of a FUZ voice file, followed by LipSize bytes of lip-sync data
type FUZHeader struct {
	Magic   [4]byte // "FUZE"
	Version uint32  // 1
	LipSize uint32
}

const (
	// FormatWMAv2 is the xWMA format tag of WMA version 2 streams
	FormatWMAv2 = 0x0161
	// FormatWMAPro is the xWMA format tag of WMA Pro streams
	FormatWMAPro = 0x0162

	fmtChunkSize = 18
	fuzVersion   = 1
)
