package container

// XOR combines data with key, tiling the key across the whole region. The
// result is a new buffer; applying XOR again with the same key restores the
// input. An empty key returns an unmodified copy.
func XOR(data, key []byte) []byte {
	out := make([]byte, len(data))
	if len(key) == 0 {
		copy(out, data)
		return out
	}
	for i, b := range data {
		out[i] = b ^ key[i%len(key)]
	}
	return out
}
