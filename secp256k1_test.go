package keycore

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func testCurve(t *testing.T) Curve {
	t.Helper()
	curve, err := NewCurve(Secp256k1)
	require.NoError(t, err)
	return curve
}

func TestBasePointMatchesGeneratorVector(t *testing.T) {
	curve := testCurve(t)

	want := "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	require.Equal(t, want, hex.EncodeToString(curve.BasePoint().CompressedBytes()))
}

func TestScalarArithmetic(t *testing.T) {
	curve := testCurve(t)

	a, err := curve.ScalarRandom()
	require.NoError(t, err)
	b, err := curve.ScalarRandom()
	require.NoError(t, err)

	// a + b - b == a
	require.True(t, a.Add(b).Sub(b).Equal(a))

	// a + (-a) == 0
	require.True(t, a.Add(a.Negate()).IsZero())

	// a * a^-1 == 1
	aInv, err := a.Invert()
	require.NoError(t, err)
	require.True(t, a.Mul(aInv).Equal(curve.ScalarOne()))

	// 0 has no inverse
	_, err = curve.ScalarZero().Invert()
	require.ErrorIs(t, err, ErrScalarZero)
}

func TestScalarSerializationRoundTrip(t *testing.T) {
	curve := testCurve(t)

	a, err := curve.ScalarRandom()
	require.NoError(t, err)

	parsed, err := curve.ScalarFromBytes(a.Bytes())
	require.NoError(t, err)
	require.True(t, a.Equal(parsed))

	_, err = curve.ScalarFromBytes(make([]byte, 31))
	require.ErrorIs(t, err, ErrInvalidScalarLength)
}

func TestValidateScalarRejectsOverflow(t *testing.T) {
	curve := testCurve(t)

	// The group order itself is out of range.
	order := make([]byte, 32)
	copy(order, groupOrderBytes(t))
	require.ErrorIs(t, curve.ValidateScalar(order), ErrInvalidScalarValue)

	// n - 1 is the largest valid scalar.
	order[31]--
	require.NoError(t, curve.ValidateScalar(order))
}

func TestPointArithmetic(t *testing.T) {
	curve := testCurve(t)

	a, err := curve.ScalarRandom()
	require.NoError(t, err)
	b, err := curve.ScalarRandom()
	require.NoError(t, err)

	g := curve.BasePoint()
	aG := g.Mul(a)
	bG := g.Mul(b)

	// (a+b)G == aG + bG
	require.True(t, g.Mul(a.Add(b)).Equal(aG.Add(bG)))

	// P - P == identity
	require.True(t, aG.Sub(aG).IsIdentity())

	// identity + P == P
	require.True(t, curve.PointIdentity().Add(aG).Equal(aG))

	// 0 * P == identity
	require.True(t, g.Mul(curve.ScalarZero()).IsIdentity())
}

func TestBlindedBaseMulMatchesPlain(t *testing.T) {
	curve := testCurve(t)

	for i := 0; i < 8; i++ {
		k, err := curve.ScalarRandom()
		require.NoError(t, err)

		blinded, err := curve.BlindedBaseMul(k)
		require.NoError(t, err)
		require.True(t, blinded.Equal(curve.BasePoint().Mul(k)))
	}
}

func TestPointSerializationRoundTrip(t *testing.T) {
	curve := testCurve(t)

	k, err := curve.ScalarRandom()
	require.NoError(t, err)
	point := curve.BasePoint().Mul(k)

	compressed := point.CompressedBytes()
	require.Len(t, compressed, 33)
	parsed, err := curve.PointFromBytes(compressed)
	require.NoError(t, err)
	require.True(t, point.Equal(parsed))

	uncompressed := point.Bytes()
	require.Len(t, uncompressed, 65)
	parsed, err = curve.PointFromBytes(uncompressed)
	require.NoError(t, err)
	require.True(t, point.Equal(parsed))

	_, err = curve.PointFromBytes(make([]byte, 32))
	require.ErrorIs(t, err, ErrInvalidPointLength)
}

func TestNewCurveRejectsUnknownType(t *testing.T) {
	_, err := NewCurve(CurveType("p256"))
	require.ErrorIs(t, err, ErrContextInitializationFailed)
}

// groupOrderBytes returns the 32-byte big-endian group order n.
func groupOrderBytes(t *testing.T) []byte {
	t.Helper()
	n, err := hex.DecodeString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
	require.NoError(t, err)
	require.Len(t, n, 32)
	return n
}

func TestSecureCompare(t *testing.T) {
	require.True(t, SecureCompare([]byte{1, 2, 3}, []byte{1, 2, 3}))
	require.False(t, SecureCompare([]byte{1, 2, 3}, []byte{1, 2, 4}))
	require.False(t, SecureCompare([]byte{1, 2}, []byte{1, 2, 3}))
}

func TestZeroBytes(t *testing.T) {
	b := []byte{0xde, 0xad, 0xbe, 0xef}
	ZeroBytes(b)
	require.True(t, bytes.Equal(b, make([]byte, 4)))
}
