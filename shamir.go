package keycore

// Share is a Shamir share: the polynomial evaluated at the holder's index.
type Share struct {
	Index ParticipantIndex
	Value Scalar
}

// NewShare creates a new share.
func NewShare(index ParticipantIndex, value Scalar) *Share {
	return &Share{Index: index, Value: value}
}

// Zeroize securely clears the share value.
func (s *Share) Zeroize() {
	if s.Value != nil {
		s.Value.Zeroize()
	}
}

// ReconstructSecret rebuilds the shared secret from at least threshold
// distinct shares via Lagrange interpolation at x = 0.
//
// This is a verification and recovery operation: during normal operation the
// joint secret is never materialized by any single holder.
func ReconstructSecret(curve Curve, shares []*Share, threshold int) (Scalar, error) {
	if threshold <= 1 {
		return nil, ErrInvalidThreshold.WithDetails("threshold %d must be greater than 1", threshold)
	}

	// Deduplicate by index; a repeated share contributes no new information
	// and must not count toward the threshold.
	distinct := make([]*Share, 0, len(shares))
	seen := make(map[ParticipantIndex]bool, len(shares))
	for _, share := range shares {
		if share == nil || share.Value == nil {
			continue
		}
		if share.Index == 0 || seen[share.Index] {
			continue
		}
		seen[share.Index] = true
		distinct = append(distinct, share)
	}

	if len(distinct) < threshold {
		return nil, ErrThresholdNotMet.
			WithContext("required", threshold).
			WithContext("provided", len(distinct))
	}

	selected := distinct[:threshold]

	indices := make([]Scalar, len(selected))
	for i, share := range selected {
		idx, err := share.Index.ToScalar(curve)
		if err != nil {
			return nil, err
		}
		indices[i] = idx
	}

	secret := curve.ScalarZero()
	for i, share := range selected {
		// Lagrange basis at x = 0: prod_j(-x_j) / prod_j(x_i - x_j).
		numerator := curve.ScalarOne()
		denominator := curve.ScalarOne()
		for j := range selected {
			if i == j {
				continue
			}
			numerator = numerator.Mul(indices[j].Negate())
			denominator = denominator.Mul(indices[i].Sub(indices[j]))
		}

		denomInv, err := denominator.Invert()
		if err != nil {
			return nil, ErrThresholdNotMet.WithCause(err).WithDetails("degenerate share indices")
		}

		coefficient := numerator.Mul(denomInv)
		secret = secret.Add(share.Value.Mul(coefficient))
	}

	return secret, nil
}
