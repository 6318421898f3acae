package huffbit

// DefaultKey is the process-wide obfuscation key of the reference deployment.
const DefaultKey = 0x5A

// Mask applies the reversible byte obfuscation: complement, then xor with key.
func Mask(b, key byte) byte {
	return ^b ^ key
}

// Unmask inverts Mask: Unmask(Mask(b, key), key) == b for all b and key.
func Unmask(c, key byte) byte {
	return ^(c ^ key)
}

// MaskBytes obfuscates buf in place. The transform is byte-wise and
// order-independent, so any chunking with the same key yields the same result.
func MaskBytes(buf []byte, key byte) {
	for i := range buf {
		buf[i] = Mask(buf[i], key)
	}
}

// UnmaskBytes de-obfuscates buf in place.
func UnmaskBytes(buf []byte, key byte) {
	for i := range buf {
		buf[i] = Unmask(buf[i], key)
	}
}
