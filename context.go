package keycore

import (
	"bytes"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
)

// generatorCompressed is the compressed encoding of the secp256k1 generator
// point, equivalently the public key of the private key 1. The context self
// test derives it from scratch and refuses to start on any mismatch.
var generatorCompressed = mustHex("0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// Context is the process-wide handle to the validated curve backend. It is
// immutable after construction and safe for concurrent use; it holds no
// secret material, so it needs no teardown.
//
// Exactly one backend is selected at initialization and proven against a
// known-answer vector. There is deliberately no fallback path: an
// incompatible curve silently standing in for secp256k1 destroys custody of
// every key derived afterwards.
type Context struct {
	curve Curve
}

// NewContext initializes the curve backend for the given type and runs the
// known-answer self test. Any failure is ErrContextInitializationFailed.
func NewContext(curveType CurveType) (*Context, error) {
	curve, err := NewCurve(curveType)
	if err != nil {
		return nil, err
	}
	if err := selfTest(curve); err != nil {
		return nil, err
	}
	return &Context{curve: curve}, nil
}

// selfTest proves the backend implements the expected curve by deriving the
// generator vector from first principles.
func selfTest(curve Curve) error {
	if got := curve.BasePoint().CompressedBytes(); !bytes.Equal(got, generatorCompressed) {
		return ErrContextInitializationFailed.WithDetails(
			"base point mismatch: backend is not secp256k1 (got %x)", got)
	}

	one := curve.ScalarOne()
	derived, err := curve.BlindedBaseMul(one)
	if err != nil {
		return ErrContextInitializationFailed.WithCause(err)
	}
	if !bytes.Equal(derived.CompressedBytes(), generatorCompressed) {
		return ErrContextInitializationFailed.WithDetails("1*G does not match the generator vector")
	}

	// The additive inverse must round-trip through the group order.
	if !one.Add(one.Negate()).IsZero() {
		return ErrContextInitializationFailed.WithDetails("scalar arithmetic self test failed")
	}
	return nil
}

// Curve returns the validated curve backend.
func (c *Context) Curve() Curve {
	return c.curve
}

// The capability surface below exposes the stateless core operations bound
// to the validated backend, so callers hold one vetted handle instead of
// reaching for package functions against an unchecked curve.

func (c *Context) ValidatePrivateKey(b []byte) error {
	return ValidatePrivateKeyBytes(b)
}

func (c *Context) ValidatePublicKey(b []byte) error {
	return ValidatePublicKeyBytes(b)
}

func (c *Context) DerivePublicKey(priv *btcec.PrivateKey) (*btcec.PublicKey, error) {
	return DerivePublicKey(priv)
}

func (c *Context) Sign(priv *btcec.PrivateKey, hash []byte) (*Signature, error) {
	return Sign(priv, hash)
}

func (c *Context) SignRecoverable(priv *btcec.PrivateKey, hash []byte) (*Signature, byte, error) {
	return SignRecoverable(priv, hash)
}

func (c *Context) Verify(sig *Signature, hash []byte, pub *btcec.PublicKey) (bool, error) {
	return Verify(sig, hash, pub)
}

func (c *Context) RecoverPublicKey(sig *Signature, recoveryID byte, hash []byte) (*btcec.PublicKey, error) {
	return RecoverPublicKey(sig, recoveryID, hash)
}

func (c *Context) PrivateKeyTweakAdd(priv *btcec.PrivateKey, tweak []byte) (*btcec.PrivateKey, error) {
	return PrivateKeyTweakAdd(priv, tweak)
}

func (c *Context) PrivateKeyTweakMul(priv *btcec.PrivateKey, tweak []byte) (*btcec.PrivateKey, error) {
	return PrivateKeyTweakMul(priv, tweak)
}

func (c *Context) PrivateKeyNegate(priv *btcec.PrivateKey) (*btcec.PrivateKey, error) {
	return PrivateKeyNegate(priv)
}

func (c *Context) PublicKeyTweakAdd(pub *btcec.PublicKey, tweak []byte) (*btcec.PublicKey, error) {
	return PublicKeyTweakAdd(pub, tweak)
}
