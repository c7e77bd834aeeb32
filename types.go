package keycore

import (
	"github.com/btcsuite/btcd/btcec/v2"
)

// ParticipantIndex identifies a keygen participant. Indices are 1-based;
// index 0 is the evaluation point of the shared secret itself and is never a
// valid participant.
type ParticipantIndex uint32

// KeyShare is one participant's share of a jointly generated key. SecretShare
// is the only secret field and must be zeroized when the share is released.
type KeyShare struct {
	ParticipantID  ParticipantIndex
	SecretShare    Scalar
	PublicKey      Point
	GroupPublicKey Point
}

// Zeroize securely clears the secret share.
func (ks *KeyShare) Zeroize() {
	if ks.SecretShare != nil {
		ks.SecretShare.Zeroize()
	}
}

// SigningKey converts the secret share into a private key usable with the
// ECDSA layer, e.g. to produce per-participant partial proofs. The returned
// key is independent secret material; the caller wipes it separately.
func (ks *KeyShare) SigningKey() (*btcec.PrivateKey, error) {
	if ks.SecretShare == nil || ks.SecretShare.IsZero() {
		return nil, ErrInvalidPrivateKey.WithDetails("secret share is empty")
	}
	b := ks.SecretShare.Bytes()
	defer ZeroBytes(b)
	return ParsePrivateKey(b)
}

// KeygenResult is the terminal output of a completed keygen run.
type KeygenResult struct {
	KeyShare       *KeyShare
	GroupPublicKey Point
	Participants   []ParticipantIndex
	Threshold      int
}

// SessionState tracks a keygen session through its protocol rounds.
type SessionState int

const (
	// StateUninitialized is the starting state: no polynomial sampled, no
	// shares issued.
	StateUninitialized SessionState = iota

	// StateSharesDistributed means the local polynomial is committed and
	// outgoing shares have been handed to the transport.
	StateSharesDistributed

	// StateSharesVerified means every received share checked out against
	// its sender's commitments.
	StateSharesVerified

	// StateCombined is terminal: the joint public key and the final local
	// share exist.
	StateCombined

	// StateAborted is terminal: a verification failed and all secret
	// material for the run has been discarded.
	StateAborted
)

// String returns the state name.
func (s SessionState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateSharesDistributed:
		return "shares_distributed"
	case StateSharesVerified:
		return "shares_verified"
	case StateCombined:
		return "combined"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}
