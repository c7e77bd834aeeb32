package keycore

import (
	"crypto/rand"
	"encoding/hex"
	"runtime"

	"github.com/btcsuite/btcd/btcec/v2"
)

// Secp256k1Curve implements the Curve interface on top of btcec/v2.
type Secp256k1Curve struct{}

// NewSecp256k1Curve creates a new secp256k1 curve instance.
func NewSecp256k1Curve() *Secp256k1Curve {
	return &Secp256k1Curve{}
}

func (c *Secp256k1Curve) Name() string    { return "secp256k1" }
func (c *Secp256k1Curve) ScalarSize() int { return 32 }
func (c *Secp256k1Curve) PointSize() int  { return 33 } // Compressed

// ScalarFromBytes interprets data as a big-endian integer reduced modulo the
// group order. Use ValidateScalar first when overflow must be rejected.
func (c *Secp256k1Curve) ScalarFromBytes(data []byte) (Scalar, error) {
	if len(data) != 32 {
		return nil, ErrInvalidScalarLength
	}

	scalar := new(btcec.ModNScalar)
	scalar.SetBytes((*[32]byte)(data))

	return &Secp256k1Scalar{inner: scalar}, nil
}

// ScalarFromUniformBytes reduces at least 32 bytes of uniformly distributed
// input modulo the group order.
func (c *Secp256k1Curve) ScalarFromUniformBytes(data []byte) (Scalar, error) {
	if len(data) < 32 {
		return nil, ErrInvalidScalarLength
	}

	scalar := new(btcec.ModNScalar)
	scalar.SetBytes((*[32]byte)(data[:32]))
	return &Secp256k1Scalar{inner: scalar}, nil
}

// ScalarRandom samples a uniformly random scalar in [1, n-1] by rejection.
func (c *Secp256k1Curve) ScalarRandom() (Scalar, error) {
	for {
		var buf [32]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return nil, ErrRandomnessGeneration.WithCause(err)
		}

		scalar := new(btcec.ModNScalar)
		overflow := scalar.SetBytes(&buf)
		ZeroBytes(buf[:])
		if overflow == 0 && !scalar.IsZero() {
			return &Secp256k1Scalar{inner: scalar}, nil
		}
	}
}

func (c *Secp256k1Curve) ScalarZero() Scalar {
	return &Secp256k1Scalar{inner: new(btcec.ModNScalar)}
}

func (c *Secp256k1Curve) ScalarOne() Scalar {
	scalar := new(btcec.ModNScalar)
	scalar.SetInt(1)
	return &Secp256k1Scalar{inner: scalar}
}

func (c *Secp256k1Curve) PointFromBytes(data []byte) (Point, error) {
	if len(data) != 33 && len(data) != 65 {
		return nil, ErrInvalidPointLength
	}

	pubKey, err := btcec.ParsePubKey(data)
	if err != nil {
		return nil, ErrInvalidPointValue
	}

	return &Secp256k1Point{inner: pubKey}, nil
}

func (c *Secp256k1Curve) BasePoint() Point {
	return &Secp256k1Point{inner: btcec.Generator()}
}

// PointIdentity returns the point at infinity. It exists only as the neutral
// element of point addition and is never a valid public key.
func (c *Secp256k1Curve) PointIdentity() Point {
	return &Secp256k1Point{inner: nil}
}

// BlindedBaseMul computes scalar*G as (scalar+b)*G + (-b)*G for a fresh
// random b. The underlying multiplication is variable-time, so the mask
// decouples its timing from the secret scalar's bits.
func (c *Secp256k1Curve) BlindedBaseMul(scalar Scalar) (Point, error) {
	s, ok := scalar.(*Secp256k1Scalar)
	if !ok {
		return nil, ErrInvalidScalarValue
	}

	var result btcec.JacobianPoint
	if err := blindedScalarBaseMult(s.inner, &result); err != nil {
		return nil, err
	}
	if isJacobianInfinity(&result) {
		return c.PointIdentity(), nil
	}
	result.ToAffine()
	return &Secp256k1Point{inner: btcec.NewPublicKey(&result.X, &result.Y)}, nil
}

func (c *Secp256k1Curve) ValidateScalar(data []byte) error {
	if len(data) != 32 {
		return ErrInvalidScalarLength
	}

	scalar := new(btcec.ModNScalar)
	overflow := scalar.SetBytes((*[32]byte)(data))
	scalar.Zero()
	if overflow != 0 {
		return ErrInvalidScalarValue
	}

	return nil
}

func (c *Secp256k1Curve) ValidatePoint(data []byte) error {
	_, err := c.PointFromBytes(data)
	return err
}

// isJacobianInfinity reports whether the point is the group identity in
// Jacobian form.
func isJacobianInfinity(p *btcec.JacobianPoint) bool {
	return (p.X.IsZero() && p.Y.IsZero()) || p.Z.IsZero()
}

// blindedScalarBaseMult computes k*G with k masked by a random scalar so the
// variable-time multiplications never run directly on the secret value.
func blindedScalarBaseMult(k *btcec.ModNScalar, result *btcec.JacobianPoint) error {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return ErrRandomnessGeneration.WithCause(err)
	}
	var mask btcec.ModNScalar
	mask.SetBytes(&buf)
	ZeroBytes(buf[:])

	var masked btcec.ModNScalar
	masked.Add2(k, &mask)

	var p1, p2 btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(&masked, &p1)
	mask.Negate()
	btcec.ScalarBaseMultNonConst(&mask, &p2)
	btcec.AddNonConst(&p1, &p2, result)

	masked.Zero()
	mask.Zero()
	return nil
}

// Secp256k1Scalar implements the Scalar interface.
type Secp256k1Scalar struct {
	inner *btcec.ModNScalar
}

func (s *Secp256k1Scalar) Bytes() []byte {
	var bytes [32]byte
	s.inner.PutBytes(&bytes)
	return bytes[:]
}

func (s *Secp256k1Scalar) String() string {
	return hex.EncodeToString(s.Bytes())
}

func (s *Secp256k1Scalar) Add(other Scalar) Scalar {
	result := new(btcec.ModNScalar)
	result.Add2(s.inner, other.(*Secp256k1Scalar).inner)
	return &Secp256k1Scalar{inner: result}
}

func (s *Secp256k1Scalar) Sub(other Scalar) Scalar {
	neg := new(btcec.ModNScalar).Set(other.(*Secp256k1Scalar).inner)
	neg.Negate()
	result := new(btcec.ModNScalar)
	result.Add2(s.inner, neg)
	return &Secp256k1Scalar{inner: result}
}

func (s *Secp256k1Scalar) Mul(other Scalar) Scalar {
	result := new(btcec.ModNScalar)
	result.Mul2(s.inner, other.(*Secp256k1Scalar).inner)
	return &Secp256k1Scalar{inner: result}
}

func (s *Secp256k1Scalar) Negate() Scalar {
	result := new(btcec.ModNScalar).Set(s.inner)
	result.Negate()
	return &Secp256k1Scalar{inner: result}
}

func (s *Secp256k1Scalar) Invert() (Scalar, error) {
	if s.IsZero() {
		return nil, ErrScalarZero
	}

	result := new(btcec.ModNScalar).Set(s.inner)
	result.InverseNonConst()
	return &Secp256k1Scalar{inner: result}, nil
}

func (s *Secp256k1Scalar) Equal(other Scalar) bool {
	return s.inner.Equals(other.(*Secp256k1Scalar).inner)
}

func (s *Secp256k1Scalar) IsZero() bool {
	return s.inner.IsZero()
}

func (s *Secp256k1Scalar) Zeroize() {
	s.inner.Zero()
	runtime.KeepAlive(s)
}

// Secp256k1Point implements the Point interface.
type Secp256k1Point struct {
	inner *btcec.PublicKey
}

func (p *Secp256k1Point) Bytes() []byte {
	if p.inner == nil {
		return make([]byte, 65)
	}
	return p.inner.SerializeUncompressed()
}

func (p *Secp256k1Point) CompressedBytes() []byte {
	if p.inner == nil {
		return make([]byte, 33)
	}
	return p.inner.SerializeCompressed()
}

func (p *Secp256k1Point) String() string {
	return hex.EncodeToString(p.CompressedBytes())
}

func (p *Secp256k1Point) Add(other Point) Point {
	o := other.(*Secp256k1Point)
	if p.inner == nil {
		return o
	}
	if o.inner == nil {
		return p
	}

	var a, b, sum btcec.JacobianPoint
	p.inner.AsJacobian(&a)
	o.inner.AsJacobian(&b)
	btcec.AddNonConst(&a, &b, &sum)

	// P + (-P) lands on the point at infinity.
	if isJacobianInfinity(&sum) {
		return &Secp256k1Point{inner: nil}
	}

	sum.ToAffine()
	return &Secp256k1Point{inner: btcec.NewPublicKey(&sum.X, &sum.Y)}
}

func (p *Secp256k1Point) Sub(other Point) Point {
	return p.Add(other.Negate())
}

// Mul multiplies the point by a scalar. Variable-time: only for public
// operands such as commitment points and index powers. Secret scalars go
// through Curve.BlindedBaseMul.
func (p *Secp256k1Point) Mul(scalar Scalar) Point {
	if p.inner == nil {
		return p
	}

	s := scalar.(*Secp256k1Scalar)
	if s.inner.IsZero() {
		return &Secp256k1Point{inner: nil}
	}

	var point, result btcec.JacobianPoint
	p.inner.AsJacobian(&point)
	btcec.ScalarMultNonConst(s.inner, &point, &result)

	if isJacobianInfinity(&result) {
		return &Secp256k1Point{inner: nil}
	}

	result.ToAffine()
	return &Secp256k1Point{inner: btcec.NewPublicKey(&result.X, &result.Y)}
}

func (p *Secp256k1Point) Negate() Point {
	if p.inner == nil {
		return p
	}

	var jac btcec.JacobianPoint
	p.inner.AsJacobian(&jac)
	jac.Y.Negate(1)
	jac.ToAffine()
	return &Secp256k1Point{inner: btcec.NewPublicKey(&jac.X, &jac.Y)}
}

func (p *Secp256k1Point) Equal(other Point) bool {
	o := other.(*Secp256k1Point)
	if p.inner == nil && o.inner == nil {
		return true
	}
	if p.inner == nil || o.inner == nil {
		return false
	}

	return p.inner.IsEqual(o.inner)
}

func (p *Secp256k1Point) IsIdentity() bool {
	return p.inner == nil
}
