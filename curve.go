package keycore

import (
	"crypto/rand"
	"errors"
)

// Curve defines the interface for elliptic curve operations used by the
// threshold key generation layer. Exactly one backend exists (secp256k1);
// the interface keeps the protocol code independent of the backend's types,
// not of the backend's identity.
type Curve interface {
	// Metadata
	Name() string
	ScalarSize() int
	PointSize() int

	// Scalar operations
	ScalarFromBytes([]byte) (Scalar, error)
	ScalarFromUniformBytes([]byte) (Scalar, error)
	ScalarRandom() (Scalar, error)
	ScalarZero() Scalar
	ScalarOne() Scalar

	// Point operations
	PointFromBytes([]byte) (Point, error)
	BasePoint() Point
	PointIdentity() Point

	// BlindedBaseMul computes scalar*G with the scalar masked by a random
	// value so that execution time is uncorrelated with its bits. Required
	// whenever the scalar is secret material.
	BlindedBaseMul(Scalar) (Point, error)

	// Validation
	ValidateScalar([]byte) error
	ValidatePoint([]byte) error
}

// Scalar represents a scalar value modulo the curve's group order.
type Scalar interface {
	Bytes() []byte
	String() string

	Add(Scalar) Scalar
	Sub(Scalar) Scalar
	Mul(Scalar) Scalar
	Negate() Scalar
	Invert() (Scalar, error)

	Equal(Scalar) bool
	IsZero() bool

	Zeroize()
}

// Point represents a point on the elliptic curve.
type Point interface {
	Bytes() []byte
	CompressedBytes() []byte
	String() string

	Add(Point) Point
	Sub(Point) Point
	Mul(Scalar) Point
	Negate() Point

	Equal(Point) bool
	IsIdentity() bool
}

// CurveType identifies a curve backend.
type CurveType string

// Secp256k1 is the only supported backend. An unknown type is a hard
// initialization failure, never a substitution: the product this core was
// extracted from once shipped a silent curve fallback, and keys produced on
// the wrong curve are unrecoverable.
const Secp256k1 CurveType = "secp256k1"

// NewCurve creates the curve backend for the given type.
func NewCurve(curveType CurveType) (Curve, error) {
	switch curveType {
	case Secp256k1:
		return NewSecp256k1Curve(), nil
	default:
		return nil, ErrContextInitializationFailed.WithDetails("unsupported curve type %q", curveType)
	}
}

// Low-level curve errors wrapped into the CoreError taxonomy by callers.
var (
	ErrInvalidScalarLength = errors.New("invalid scalar length")
	ErrInvalidPointLength  = errors.New("invalid point length")
	ErrInvalidScalarValue  = errors.New("invalid scalar value")
	ErrInvalidPointValue   = errors.New("invalid point")
	ErrScalarZero          = errors.New("scalar is zero")
)

// SecureRandom generates cryptographically secure random bytes.
func SecureRandom(size int) ([]byte, error) {
	bytes := make([]byte, size)
	_, err := rand.Read(bytes)
	return bytes, err
}
