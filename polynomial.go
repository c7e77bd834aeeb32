package keycore

import (
	"fmt"
)

// Polynomial is a polynomial over the scalar field. Its coefficients are
// secret whenever the free coefficient is: the whole object is zeroized as a
// unit.
type Polynomial struct {
	curve        Curve
	coefficients []Scalar
}

// NewRandomPolynomial creates a polynomial of the given degree with the
// supplied constant term and uniformly random higher coefficients.
func NewRandomPolynomial(curve Curve, degree int, constantTerm Scalar) (*Polynomial, error) {
	if degree < 0 {
		return nil, fmt.Errorf("degree must be non-negative")
	}

	coefficients := make([]Scalar, degree+1)
	coefficients[0] = constantTerm

	for i := 1; i <= degree; i++ {
		coeff, err := curve.ScalarRandom()
		if err != nil {
			return nil, fmt.Errorf("failed to generate coefficient %d: %w", i, err)
		}
		coefficients[i] = coeff
	}

	return &Polynomial{
		curve:        curve,
		coefficients: coefficients,
	}, nil
}

// newPolynomialFromCoefficients wraps already-derived coefficients. Used by
// the seeded keygen path; takes ownership of the slice.
func newPolynomialFromCoefficients(curve Curve, coefficients []Scalar) *Polynomial {
	return &Polynomial{curve: curve, coefficients: coefficients}
}

// Evaluate evaluates the polynomial at x using Horner's method.
func (p *Polynomial) Evaluate(x Scalar) Scalar {
	if len(p.coefficients) == 0 {
		return p.curve.ScalarZero()
	}

	result := p.coefficients[len(p.coefficients)-1]
	for i := len(p.coefficients) - 2; i >= 0; i-- {
		result = result.Mul(x).Add(p.coefficients[i])
	}
	return result
}

// Degree returns the degree of the polynomial.
func (p *Polynomial) Degree() int {
	return len(p.coefficients) - 1
}

// Zeroize securely clears all coefficients.
func (p *Polynomial) Zeroize() {
	ZeroizeScalars(p.coefficients)
	for i := range p.coefficients {
		p.coefficients[i] = nil
	}
	p.coefficients = nil
}
