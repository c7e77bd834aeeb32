package keycore

import (
	"crypto/subtle"
)

// ZeroBytes securely zeros a byte slice. crypto/subtle is used so the
// compiler cannot elide the wipe as a dead store.
func ZeroBytes(b []byte) {
	if len(b) == 0 {
		return
	}
	zeros := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zeros)
}

// ZeroizeScalars securely clears a slice of scalars.
func ZeroizeScalars(scalars []Scalar) {
	for _, scalar := range scalars {
		if scalar != nil {
			scalar.Zeroize()
		}
	}
}
