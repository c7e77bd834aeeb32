package keycore

import (
	"crypto/subtle"
	"encoding/binary"
)

// ToScalar converts a participant index to a scalar evaluation point.
func (pi ParticipantIndex) ToScalar(curve Curve) (Scalar, error) {
	if pi == 0 {
		return nil, ErrInvalidParticipantID.WithDetails("participant index 0 is reserved for the secret")
	}

	bytes := make([]byte, curve.ScalarSize())
	binary.BigEndian.PutUint32(bytes[curve.ScalarSize()-4:], uint32(pi))
	return curve.ScalarFromBytes(bytes)
}

// SecureCompare performs a constant-time comparison of two byte slices.
func SecureCompare(a, b []byte) bool {
	return len(a) == len(b) && subtle.ConstantTimeCompare(a, b) == 1
}
