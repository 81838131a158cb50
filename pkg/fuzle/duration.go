package fuzle

// Duration derives the playback length in seconds from the total decoded
// byte count stored in the last packet table entry.
func (h *Header) Duration() (float64, error) {
	if len(h.PacketTable) == 0 {
		return 0, newError(KindInvalidPacketTable, -1, "packet table is empty")
	}

	bytesPerFrame := uint32(h.Channels) * uint32(h.BitsPerSample/8)
	if bytesPerFrame == 0 {
		return 0, newError(KindDivisionByZero, -1, "%d channels of %d bits per sample", h.Channels, h.BitsPerSample)
	}
	if h.SampleRate == 0 {
		return 0, newError(KindDivisionByZero, -1, "sample rate is 0")
	}

	numSamples := float64(h.DecodedBytes()) / float64(bytesPerFrame)
	return numSamples / float64(h.SampleRate), nil
}
