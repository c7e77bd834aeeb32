package keycore

import (
	"crypto/sha256"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Domain separators for seeded polynomial derivation. Changing either
// invalidates every share set ever derived; treat them as frozen.
const (
	seededKeygenDomain = "FUEKI_SEEDED_KEYGEN_v1"
	seededScalarSalt   = "FUEKI_SEEDED_SCALAR_v1"
)

// SeededKeygen derives a full share set deterministically from seed
// material, so a wallet restoring from its recovery seed reproduces the
// exact shares and joint public key of the original run.
//
// Unlike the interactive session, one caller computes every participant's
// share; the trust model is a single owner splitting custody across its own
// devices, not mutually distrusting parties.
type SeededKeygen struct {
	curve        Curve
	threshold    int
	participants []ParticipantIndex
	seed         []byte
}

// NewSeededKeygen validates the configuration and retains a private copy of
// the seed. Call Zeroize when the generator is no longer needed.
func NewSeededKeygen(curve Curve, threshold int, participants []ParticipantIndex, seed []byte) (*SeededKeygen, error) {
	if len(participants) == 0 {
		return nil, ErrInvalidThreshold.WithDetails("participant set is empty")
	}
	if err := ValidateThresholdConfig(threshold, participants, participants[0]); err != nil {
		return nil, err
	}
	if len(seed) < 16 {
		return nil, ErrInvalidThreshold.WithDetails("seed must be at least 16 bytes, got %d", len(seed))
	}

	return &SeededKeygen{
		curve:        curve,
		threshold:    threshold,
		participants: append([]ParticipantIndex(nil), participants...),
		seed:         append([]byte(nil), seed...),
	}, nil
}

// Zeroize wipes the retained seed.
func (g *SeededKeygen) Zeroize() {
	ZeroBytes(g.seed)
}

// GenerateKeyShares derives every participant's polynomial from the seed,
// evaluates the shares, and combines them exactly as an interactive run
// would. Identical inputs always produce identical shares and joint key.
func (g *SeededKeygen) GenerateKeyShares() (map[ParticipantIndex]*KeyShare, Point, error) {
	polynomials := make(map[ParticipantIndex]*Polynomial, len(g.participants))
	defer func() {
		for _, polynomial := range polynomials {
			polynomial.Zeroize()
		}
	}()

	groupPublicKey := g.curve.PointIdentity()
	for _, pid := range g.participants {
		polynomial, err := g.derivePolynomial(pid)
		if err != nil {
			return nil, nil, err
		}
		polynomials[pid] = polynomial

		constant, err := g.curve.BlindedBaseMul(polynomial.coefficients[0])
		if err != nil {
			return nil, nil, err
		}
		groupPublicKey = groupPublicKey.Add(constant)
	}

	keyShares := make(map[ParticipantIndex]*KeyShare, len(g.participants))
	for _, receiver := range g.participants {
		x, err := receiver.ToScalar(g.curve)
		if err != nil {
			return nil, nil, err
		}

		secretShare := g.curve.ScalarZero()
		for _, polynomial := range polynomials {
			evaluation := polynomial.Evaluate(x)
			secretShare = secretShare.Add(evaluation)
			evaluation.Zeroize()
		}

		publicKey, err := g.curve.BlindedBaseMul(secretShare)
		if err != nil {
			return nil, nil, err
		}

		keyShares[receiver] = &KeyShare{
			ParticipantID:  receiver,
			SecretShare:    secretShare,
			PublicKey:      publicKey,
			GroupPublicKey: groupPublicKey,
		}
	}

	return keyShares, groupPublicKey, nil
}

// derivePolynomial builds one participant's polynomial, each coefficient an
// independent HKDF-derived scalar bound to the seed, the participant, the
// threshold, and the coefficient position.
func (g *SeededKeygen) derivePolynomial(pid ParticipantIndex) (*Polynomial, error) {
	coefficients := make([]Scalar, g.threshold)
	for i := 0; i < g.threshold; i++ {
		coeff, err := g.deriveScalar(pid, uint32(i))
		if err != nil {
			ZeroizeScalars(coefficients)
			return nil, err
		}
		coefficients[i] = coeff
	}
	return newPolynomialFromCoefficients(g.curve, coefficients), nil
}

func (g *SeededKeygen) deriveScalar(pid ParticipantIndex, index uint32) (Scalar, error) {
	info := make([]byte, 0, len(seededKeygenDomain)+12)
	info = append(info, seededKeygenDomain...)
	info = binary.BigEndian.AppendUint32(info, uint32(pid))
	info = binary.BigEndian.AppendUint32(info, uint32(g.threshold))
	info = binary.BigEndian.AppendUint32(info, index)

	reader := hkdf.New(sha256.New, g.seed, []byte(seededScalarSalt), info)
	scalarBytes := make([]byte, 64)
	if _, err := io.ReadFull(reader, scalarBytes); err != nil {
		return nil, ErrRandomnessGeneration.WithCause(err)
	}
	defer ZeroBytes(scalarBytes)

	return g.curve.ScalarFromUniformBytes(scalarBytes)
}
