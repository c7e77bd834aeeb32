package keycore

// FeldmanCommitment is a verifiable commitment to a secret-sharing
// polynomial: one curve point per coefficient, C_i = a_i*G. Publishing the
// points reveals nothing about the coefficients but lets every receiver
// check its share against the sender's polynomial.
type FeldmanCommitment struct {
	curve  Curve
	points []Point
}

// NewFeldmanCommitment commits to each coefficient of the polynomial. The
// coefficients are secret, so the base multiplications are blinded.
func NewFeldmanCommitment(curve Curve, polynomial *Polynomial) (*FeldmanCommitment, error) {
	points := make([]Point, len(polynomial.coefficients))
	for i, coeff := range polynomial.coefficients {
		point, err := curve.BlindedBaseMul(coeff)
		if err != nil {
			return nil, err
		}
		points[i] = point
	}
	return &FeldmanCommitment{curve: curve, points: points}, nil
}

// newFeldmanCommitmentFromPoints wraps already-parsed commitment points
// received from another participant.
func newFeldmanCommitmentFromPoints(curve Curve, points []Point) *FeldmanCommitment {
	return &FeldmanCommitment{curve: curve, points: points}
}

// Points returns a defensive copy of the commitment points.
func (fc *FeldmanCommitment) Points() []Point {
	points := make([]Point, len(fc.points))
	copy(points, fc.points)
	return points
}

// Constant returns the commitment to the zero-degree coefficient, the
// sender's contribution to the joint public key.
func (fc *FeldmanCommitment) Constant() Point {
	return fc.points[0]
}

// Len returns the number of committed coefficients, which equals the
// threshold of the sharing.
func (fc *FeldmanCommitment) Len() int {
	return len(fc.points)
}

// VerifyShare checks a share destined for the given participant index
// against the commitment: share*G must equal sum_i(index^i * C_i), the
// committed polynomial evaluated at the index in the exponent.
func (fc *FeldmanCommitment) VerifyShare(index ParticipantIndex, share Scalar) (bool, error) {
	if share == nil || len(fc.points) == 0 {
		return false, ErrShareVerificationFailed.WithDetails("empty share or commitment")
	}

	x, err := index.ToScalar(fc.curve)
	if err != nil {
		return false, err
	}

	expected := fc.curve.PointIdentity()
	xPower := fc.curve.ScalarOne()
	for _, point := range fc.points {
		// The commitment points and index powers are public; plain
		// variable-time multiplication is fine here.
		expected = expected.Add(point.Mul(xPower))
		xPower = xPower.Mul(x)
	}

	// The share itself is secret, so its base multiplication is blinded.
	actual, err := fc.curve.BlindedBaseMul(share)
	if err != nil {
		return false, err
	}

	return expected.Equal(actual), nil
}

// VerifyShare checks one received share against the sender's published
// commitment points. It is the pure VSS predicate used by the session layer
// and usable standalone by a transport that batches verification.
func VerifyShare(curve Curve, index ParticipantIndex, share Scalar, commitmentPoints []Point) (bool, error) {
	fc := newFeldmanCommitmentFromPoints(curve, commitmentPoints)
	return fc.VerifyShare(index, share)
}
