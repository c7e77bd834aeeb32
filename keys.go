package keycore

import (
	"github.com/btcsuite/btcd/btcec/v2"
)

// Serialized key sizes in bytes.
const (
	PrivateKeySize            = 32
	PublicKeyCompressedSize   = 33
	PublicKeyUncompressedSize = 65
)

// Serialization prefix bytes for public keys.
const (
	pubKeyPrefixEvenY        = 0x02
	pubKeyPrefixOddY         = 0x03
	pubKeyPrefixUncompressed = 0x04
)

// ValidatePrivateKeyBytes checks that b is a valid 32-byte big-endian private
// key: nonzero and strictly below the group order.
func ValidatePrivateKeyBytes(b []byte) error {
	if len(b) != PrivateKeySize {
		return ErrInvalidPrivateKey.WithDetails("expected %d bytes, got %d", PrivateKeySize, len(b))
	}

	var key btcec.ModNScalar
	overflow := key.SetBytes((*[32]byte)(b))
	isZero := key.IsZero()
	key.Zero()
	if overflow != 0 {
		return ErrInvalidPrivateKey.WithDetails("value is not below the group order")
	}
	if isZero {
		return ErrInvalidPrivateKey.WithDetails("value is zero")
	}
	return nil
}

// ParsePrivateKey validates b and returns the private key it encodes. The
// input buffer is not retained; callers remain responsible for wiping it.
func ParsePrivateKey(b []byte) (*btcec.PrivateKey, error) {
	if err := ValidatePrivateKeyBytes(b); err != nil {
		return nil, err
	}
	priv, _ := btcec.PrivKeyFromBytes(b)
	return priv, nil
}

// GeneratePrivateKey returns a fresh uniformly random private key in [1, n-1].
func GeneratePrivateKey() (*btcec.PrivateKey, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, ErrRandomnessGeneration.WithCause(err)
	}
	return priv, nil
}

// DerivePublicKey computes priv*G. The multiplication is blinded so its
// timing is uncorrelated with the key bits.
func DerivePublicKey(priv *btcec.PrivateKey) (*btcec.PublicKey, error) {
	if priv == nil || priv.Key.IsZero() {
		return nil, ErrInvalidPrivateKey
	}

	var result btcec.JacobianPoint
	if err := blindedScalarBaseMult(&priv.Key, &result); err != nil {
		return nil, err
	}
	result.ToAffine()
	return btcec.NewPublicKey(&result.X, &result.Y), nil
}

// ValidatePublicKeyBytes checks that b is a well-formed compressed (33-byte)
// or uncompressed (65-byte) public key encoding of a point on the curve.
// The point at infinity has no encoding and is therefore always rejected.
func ValidatePublicKeyBytes(b []byte) error {
	switch len(b) {
	case PublicKeyCompressedSize:
		if b[0] != pubKeyPrefixEvenY && b[0] != pubKeyPrefixOddY {
			return ErrInvalidPublicKey.WithDetails("unrecognized prefix byte 0x%02x", b[0])
		}
	case PublicKeyUncompressedSize:
		if b[0] != pubKeyPrefixUncompressed {
			return ErrInvalidPublicKey.WithDetails("unrecognized prefix byte 0x%02x", b[0])
		}
	default:
		return ErrInvalidPublicKey.WithDetails("expected %d or %d bytes, got %d",
			PublicKeyCompressedSize, PublicKeyUncompressedSize, len(b))
	}

	if _, err := btcec.ParsePubKey(b); err != nil {
		return ErrInvalidPublicKey.WithCause(err)
	}
	return nil
}

// ParsePublicKey validates b and returns the public key it encodes.
func ParsePublicKey(b []byte) (*btcec.PublicKey, error) {
	if err := ValidatePublicKeyBytes(b); err != nil {
		return nil, err
	}
	pub, err := btcec.ParsePubKey(b)
	if err != nil {
		return nil, ErrInvalidPublicKey.WithCause(err)
	}
	return pub, nil
}

// parseTweak interprets b as a 32-byte scalar below the group order.
func parseTweak(b []byte) (*btcec.ModNScalar, error) {
	if len(b) != PrivateKeySize {
		return nil, ErrInvalidPrivateKey.WithDetails("tweak must be %d bytes, got %d", PrivateKeySize, len(b))
	}
	var t btcec.ModNScalar
	if overflow := t.SetBytes((*[32]byte)(b)); overflow != 0 {
		return nil, ErrInvalidPrivateKey.WithDetails("tweak is not below the group order")
	}
	return &t, nil
}

// PrivateKeyTweakAdd returns (priv + tweak) mod n as a new private key. A
// zero result is rejected so that hierarchical derivation can skip the
// offending child index, per the usual child-key derivation contract.
func PrivateKeyTweakAdd(priv *btcec.PrivateKey, tweak []byte) (*btcec.PrivateKey, error) {
	if priv == nil || priv.Key.IsZero() {
		return nil, ErrInvalidPrivateKey
	}
	t, err := parseTweak(tweak)
	if err != nil {
		return nil, err
	}

	var sum btcec.ModNScalar
	sum.Add2(&priv.Key, t)
	t.Zero()
	if sum.IsZero() {
		return nil, ErrInvalidPrivateKey.WithDetails("tweaked key is zero")
	}
	return &btcec.PrivateKey{Key: sum}, nil
}

// PrivateKeyTweakMul returns (priv * tweak) mod n as a new private key with
// the same zero-result policy as PrivateKeyTweakAdd.
func PrivateKeyTweakMul(priv *btcec.PrivateKey, tweak []byte) (*btcec.PrivateKey, error) {
	if priv == nil || priv.Key.IsZero() {
		return nil, ErrInvalidPrivateKey
	}
	t, err := parseTweak(tweak)
	if err != nil {
		return nil, err
	}

	var product btcec.ModNScalar
	product.Mul2(&priv.Key, t)
	t.Zero()
	if product.IsZero() {
		return nil, ErrInvalidPrivateKey.WithDetails("tweaked key is zero")
	}
	return &btcec.PrivateKey{Key: product}, nil
}

// PrivateKeyNegate returns (n - priv) mod n as a new private key.
func PrivateKeyNegate(priv *btcec.PrivateKey) (*btcec.PrivateKey, error) {
	if priv == nil || priv.Key.IsZero() {
		return nil, ErrInvalidPrivateKey
	}

	var neg btcec.ModNScalar
	neg.Set(&priv.Key)
	neg.Negate()
	return &btcec.PrivateKey{Key: neg}, nil
}

// PublicKeyTweakAdd returns pub + tweak*G, the public half of
// PrivateKeyTweakAdd. Used for non-hardened hierarchical derivation where
// the private key is not available.
func PublicKeyTweakAdd(pub *btcec.PublicKey, tweak []byte) (*btcec.PublicKey, error) {
	if pub == nil {
		return nil, ErrInvalidPublicKey
	}
	t, err := parseTweak(tweak)
	if err != nil {
		return nil, err
	}

	// Tweaks originate from key material during derivation, so the base
	// multiplication is blinded like any other secret-scalar operation.
	var tweakPoint btcec.JacobianPoint
	if err := blindedScalarBaseMult(t, &tweakPoint); err != nil {
		t.Zero()
		return nil, err
	}
	t.Zero()

	var point, sum btcec.JacobianPoint
	pub.AsJacobian(&point)
	btcec.AddNonConst(&point, &tweakPoint, &sum)
	if isJacobianInfinity(&sum) {
		return nil, ErrInvalidPublicKey.WithDetails("tweaked key is the point at infinity")
	}

	sum.ToAffine()
	return btcec.NewPublicKey(&sum.X, &sum.Y), nil
}
