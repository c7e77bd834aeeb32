package keycore

import (
	"github.com/btcsuite/btcd/btcec/v2"
)

// orderAsFieldVal is the group order n reinterpreted as a field value, used
// when deciding whether an r component could have overflowed n.
var orderAsFieldVal = func() *btcec.FieldVal {
	var n btcec.FieldVal
	n.SetByteSlice(btcec.S256().N.Bytes())
	return &n
}()

// Verify reports whether the signature is valid for the message hash under
// the given public key. A mathematically incorrect signature yields
// (false, nil); errors are reserved for malformed inputs.
func Verify(sig *Signature, hash []byte, pub *btcec.PublicKey) (bool, error) {
	if sig == nil {
		return false, ErrInvalidSignature.WithDetails("signature is nil")
	}
	if err := ValidateMessageHash(hash); err != nil {
		return false, err
	}
	if pub == nil {
		return false, ErrInvalidPublicKey.WithDetails("public key is nil")
	}

	// ECDSA verification, algorithm 4.30 of Hankerson, Menezes & Vanstone.
	// The final comparison is done in Jacobian space to avoid an affine
	// conversion: r == X.x/X.z^2 (mod p) becomes r*X.z^2 == X.x (mod p),
	// checked for both candidate x coordinates r and r+n.

	// R and S must be in [1, n-1]; parsing enforces it, but the signature
	// may have been built from scalars directly.
	if sig.r.IsZero() || sig.s.IsZero() {
		return false, nil
	}

	var e btcec.ModNScalar
	e.SetBytes((*[32]byte)(hash))

	w := new(btcec.ModNScalar).InverseValNonConst(&sig.s)
	u1 := new(btcec.ModNScalar).Mul2(&e, w)
	u2 := new(btcec.ModNScalar).Mul2(&sig.r, w)

	// X = u1*G + u2*Q. Public inputs only, so the variable-time
	// multiplications leak nothing.
	var q, u1G, u2Q, x btcec.JacobianPoint
	pub.AsJacobian(&q)
	btcec.ScalarBaseMultNonConst(u1, &u1G)
	btcec.ScalarMultNonConst(u2, &q, &u2Q)
	btcec.AddNonConst(&u1G, &u2Q, &x)

	if isJacobianInfinity(&x) {
		return false, nil
	}

	z := new(btcec.FieldVal).SquareVal(&x.Z)

	var rBytes [32]byte
	sig.r.PutBytes(&rBytes)
	var sigRModP btcec.FieldVal
	sigRModP.SetBytes(&rBytes)

	result := new(btcec.FieldVal).Mul2(&sigRModP, z).Normalize()
	if result.Equals(&x.X) {
		return true, nil
	}

	// r may be the reduction of an x coordinate in [n, p-1].
	if sigRModP.IsGtOrEqPrimeMinusOrder() {
		return false, nil
	}
	sigRModP.Add(orderAsFieldVal)
	result.Mul2(&sigRModP, z).Normalize()
	return result.Equals(&x.X), nil
}

// RecoverPublicKey reconstructs the public key that produced the signature
// over the given message hash, using the recovery id to disambiguate the
// four candidate ephemeral points. The recovered key is verified against the
// signature before being returned.
func RecoverPublicKey(sig *Signature, recoveryID byte, hash []byte) (*btcec.PublicKey, error) {
	if sig == nil {
		return nil, ErrInvalidSignature.WithDetails("signature is nil")
	}
	if err := ValidateMessageHash(hash); err != nil {
		return nil, err
	}
	if recoveryID > 3 {
		return nil, ErrRecoveryFailed.WithDetails("recovery id %d out of range", recoveryID)
	}
	if sig.r.IsZero() || sig.s.IsZero() {
		return nil, ErrRecoveryFailed.WithDetails("signature component is zero")
	}

	// Q = r^-1(s*X - e*G), where X is the ephemeral point rebuilt from r and
	// the recovery id, per SEC 1 section 4.1.6.

	var rBytes [32]byte
	sig.r.PutBytes(&rBytes)
	var fieldR btcec.FieldVal
	fieldR.SetBytes(&rBytes)

	// When the overflow bit is set, the original x coordinate was r+n. That
	// sum must still be a valid field element.
	if recoveryID&recoveryCodeOverflowBit != 0 {
		if fieldR.IsGtOrEqPrimeMinusOrder() {
			return nil, ErrRecoveryFailed.WithDetails("r + n is not a valid field element")
		}
		fieldR.Add(orderAsFieldVal)
	}

	// Rebuild the ephemeral point's y coordinate with the parity the
	// recovery id names.
	oddY := recoveryID&recoveryCodeOddnessBit != 0
	var y btcec.FieldVal
	if !btcec.DecompressY(&fieldR, oddY, &y) {
		return nil, ErrRecoveryFailed.WithDetails("ephemeral x coordinate is not on the curve")
	}

	var ephemeral btcec.JacobianPoint
	ephemeral.X.Set(&fieldR).Normalize()
	ephemeral.Y.Set(&y).Normalize()
	ephemeral.Z.SetInt(1)

	var e btcec.ModNScalar
	e.SetBytes((*[32]byte)(hash))

	w := new(btcec.ModNScalar).InverseValNonConst(&sig.r)
	u1 := new(btcec.ModNScalar).Mul2(&e, w)
	u1.Negate()
	u2 := new(btcec.ModNScalar).Mul2(&sig.s, w)

	var q, u1G, u2X btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(u1, &u1G)
	btcec.ScalarMultNonConst(u2, &ephemeral, &u2X)
	btcec.AddNonConst(&u1G, &u2X, &q)

	if isJacobianInfinity(&q) {
		return nil, ErrRecoveryFailed.WithDetails("recovered key is the point at infinity")
	}

	q.ToAffine()
	pub := btcec.NewPublicKey(&q.X, &q.Y)

	// The candidate must actually satisfy the verification equation; a
	// mismatched (signature, recovery id) pair fails here.
	valid, err := Verify(sig, hash, pub)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, ErrRecoveryFailed.WithDetails("recovered key does not verify the signature")
	}
	return pub, nil
}
