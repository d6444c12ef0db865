package audio

// SamplesToBytes appends samples to dst as signed 16-bit little-endian PCM.
func SamplesToBytes(dst []byte, samples []int16) []byte {
	for _, s := range samples {
		dst = append(dst, byte(s), byte(s>>8))
	}
	return dst
}
