package keycore

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	secp "github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Signature sizes in bytes.
const (
	SignatureCompactSize     = 64
	SignatureRecoverableSize = 65
)

// Signature is an ECDSA signature over secp256k1. The S component is always
// normalized low (s <= n/2); both s and n-s satisfy the verification
// equation, and forcing one choice removes that malleability class.
type Signature struct {
	r btcec.ModNScalar
	s btcec.ModNScalar
}

// NewSignatureFromScalars instantiates a signature from R and S scalars.
func NewSignatureFromScalars(r, s *btcec.ModNScalar) *Signature {
	return &Signature{r: *r, s: *s}
}

// Serialize returns the 64-byte compact encoding: 32-byte big-endian R
// followed by 32-byte big-endian S.
func (sig *Signature) Serialize() []byte {
	var b [SignatureCompactSize]byte
	sig.r.PutBytesUnchecked(b[:32])
	sig.s.PutBytesUnchecked(b[32:])
	return b[:]
}

// SerializeRecoverable returns the 65-byte encoding: the compact signature
// followed by the recovery id byte.
func (sig *Signature) SerializeRecoverable(recoveryID byte) []byte {
	b := make([]byte, 0, SignatureRecoverableSize)
	b = append(b, sig.Serialize()...)
	b = append(b, recoveryID)
	return b
}

// IsEqual reports whether both signatures have the same R and S values.
func (sig *Signature) IsEqual(other *Signature) bool {
	return sig.r.Equals(&other.r) && sig.s.Equals(&other.s)
}

// String returns the hex encoding of the compact serialization.
func (sig *Signature) String() string {
	return hex.EncodeToString(sig.Serialize())
}

// ParseSignature parses a 64-byte compact signature, rejecting components
// outside [1, n-1] and non-canonical high-s encodings.
func ParseSignature(b []byte) (*Signature, error) {
	if len(b) != SignatureCompactSize {
		return nil, ErrInvalidSignature.WithDetails("expected %d bytes, got %d", SignatureCompactSize, len(b))
	}

	var sig Signature
	if overflow := sig.r.SetByteSlice(b[:32]); overflow {
		return nil, ErrInvalidSignature.WithDetails("R is not below the group order")
	}
	if sig.r.IsZero() {
		return nil, ErrInvalidSignature.WithDetails("R is zero")
	}
	if overflow := sig.s.SetByteSlice(b[32:]); overflow {
		return nil, ErrInvalidSignature.WithDetails("S is not below the group order")
	}
	if sig.s.IsZero() {
		return nil, ErrInvalidSignature.WithDetails("S is zero")
	}
	if sig.s.IsOverHalfOrder() {
		return nil, ErrInvalidSignature.WithDetails("S is not in canonical low form")
	}
	return &sig, nil
}

// ParseRecoverableSignature parses a 65-byte recoverable signature and
// returns the compact signature together with its recovery id.
func ParseRecoverableSignature(b []byte) (*Signature, byte, error) {
	if len(b) != SignatureRecoverableSize {
		return nil, 0, ErrInvalidSignature.WithDetails("expected %d bytes, got %d", SignatureRecoverableSize, len(b))
	}
	recoveryID := b[SignatureCompactSize]
	if recoveryID > 3 {
		return nil, 0, ErrInvalidSignature.WithDetails("recovery id %d out of range", recoveryID)
	}
	sig, err := ParseSignature(b[:SignatureCompactSize])
	if err != nil {
		return nil, 0, err
	}
	return sig, recoveryID, nil
}

// Recovery id bits: bit 0 is the oddness of the ephemeral point's Y
// coordinate, bit 1 is set when the ephemeral X coordinate overflowed the
// group order.
const (
	recoveryCodeOddnessBit  = 1 << 0
	recoveryCodeOverflowBit = 1 << 1
)

// Sign produces a deterministic ECDSA signature of the 32-byte message hash
// with the given private key. The nonce is derived from (key, hash) per
// RFC 6979, so identical inputs always yield the identical signature.
func Sign(priv *btcec.PrivateKey, hash []byte) (*Signature, error) {
	sig, _, err := SignRecoverable(priv, hash)
	return sig, err
}

// SignRecoverable is Sign plus the recovery id that lets a verifier recover
// the public key from the signature and hash alone.
func SignRecoverable(priv *btcec.PrivateKey, hash []byte) (*Signature, byte, error) {
	if err := ValidateMessageHash(hash); err != nil {
		return nil, 0, err
	}
	if priv == nil || priv.Key.IsZero() {
		return nil, 0, ErrInvalidPrivateKey
	}

	privBytes := priv.Key.Bytes()
	defer ZeroBytes(privBytes[:])

	// The probability of a zero r or s is negligible, but RFC 6979 defines
	// the retry anyway: re-derive the nonce with an incremented counter.
	// The bound only exists to make the loop visibly finite.
	const maxIterations = 128
	for iteration := uint32(0); iteration < maxIterations; iteration++ {
		// Deterministic nonce in [1, n-1] from the key, hash and counter.
		k := secp.NonceRFC6979(privBytes[:], hash, nil, nil, iteration)

		// R = k*G, in affine coordinates. Blinded: k is as secret as the
		// private key itself.
		var kG btcec.JacobianPoint
		if err := blindedScalarBaseMult(k, &kG); err != nil {
			k.Zero()
			return nil, 0, err
		}
		kG.ToAffine()

		// r = R.x mod n, retry when zero.
		var xBytes [32]byte
		kG.X.PutBytes(&xBytes)
		var r btcec.ModNScalar
		overflow := r.SetBytes(&xBytes)
		ZeroBytes(xBytes[:])
		if r.IsZero() {
			k.Zero()
			continue
		}

		// The recovery id pins down which of the four candidate ephemeral
		// points produced r: oddness of Y and whether X overflowed n.
		recoveryID := byte(overflow << 1)
		if kG.Y.IsOdd() {
			recoveryID |= recoveryCodeOddnessBit
		}

		var e btcec.ModNScalar
		e.SetBytes((*[32]byte)(hash))

		// s = k^-1(e + r*priv) mod n, retry when zero.
		kInv := new(btcec.ModNScalar).InverseValNonConst(k)
		s := new(btcec.ModNScalar).Mul2(&priv.Key, &r)
		s.Add(&e).Mul(kInv)
		k.Zero()
		kInv.Zero()
		if s.IsZero() {
			continue
		}

		// Canonical low-s form. Negating s corresponds to the ephemeral
		// point -k*G, whose Y has the opposite oddness since n is prime.
		if s.IsOverHalfOrder() {
			s.Negate()
			recoveryID ^= recoveryCodeOddnessBit
		}

		return &Signature{r: r, s: *s}, recoveryID, nil
	}

	return nil, 0, ErrSignatureCreationFailed.WithDetails("no valid nonce after %d iterations", maxIterations)
}
