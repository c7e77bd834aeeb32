package keycore

import (
	"encoding/binary"
)

// ShareMessage carries one participant's contribution to another: the
// sender's polynomial evaluated at the recipient's index, together with the
// sender's Feldman commitments so the recipient can verify the share.
//
// The Share field is secret and travels over the transport's private
// channel; the commitments are broadcast material repeated here so a message
// is self-verifying.
type ShareMessage struct {
	From        ParticipantIndex
	Share       Scalar
	Commitments []Point
}

// Zeroize securely clears the secret share carried by the message.
func (m *ShareMessage) Zeroize() {
	if m.Share != nil {
		m.Share.Zeroize()
	}
}

// MarshalBinary encodes the message as a 4-byte big-endian sender index, the
// 32-byte scalar share, and t 33-byte compressed commitment points.
func (m *ShareMessage) MarshalBinary() ([]byte, error) {
	if m.Share == nil || len(m.Commitments) == 0 {
		return nil, ErrInvalidShareMessage.WithDetails("missing share or commitments")
	}

	b := make([]byte, 0, 4+PrivateKeySize+len(m.Commitments)*PublicKeyCompressedSize)
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], uint32(m.From))
	b = append(b, idx[:]...)
	b = append(b, m.Share.Bytes()...)
	for _, point := range m.Commitments {
		if point.IsIdentity() {
			return nil, ErrInvalidShareMessage.WithDetails("commitment point is the identity")
		}
		b = append(b, point.CompressedBytes()...)
	}
	return b, nil
}

// ParseShareMessage decodes and validates a wire-format share message.
func ParseShareMessage(curve Curve, b []byte) (*ShareMessage, error) {
	const header = 4 + PrivateKeySize
	if len(b) < header+PublicKeyCompressedSize {
		return nil, ErrInvalidShareMessage.WithDetails("message too short: %d bytes", len(b))
	}
	if (len(b)-header)%PublicKeyCompressedSize != 0 {
		return nil, ErrInvalidShareMessage.WithDetails("truncated commitment sequence")
	}

	from := ParticipantIndex(binary.BigEndian.Uint32(b[:4]))
	if from == 0 {
		return nil, ErrInvalidParticipantID.WithDetails("sender index is 0")
	}

	if err := curve.ValidateScalar(b[4:header]); err != nil {
		return nil, ErrInvalidShareMessage.WithCause(err).WithDetails("share scalar out of range")
	}
	share, err := curve.ScalarFromBytes(b[4:header])
	if err != nil {
		return nil, ErrInvalidShareMessage.WithCause(err)
	}

	count := (len(b) - header) / PublicKeyCompressedSize
	commitments := make([]Point, count)
	for i := 0; i < count; i++ {
		offset := header + i*PublicKeyCompressedSize
		point, err := curve.PointFromBytes(b[offset : offset+PublicKeyCompressedSize])
		if err != nil {
			return nil, ErrInvalidShareMessage.WithCause(err).WithDetails("commitment %d is not a curve point", i)
		}
		commitments[i] = point
	}

	return &ShareMessage{From: from, Share: share, Commitments: commitments}, nil
}

// KeygenSession drives one participant through a distributed key generation
// run. The session is a pure state machine; the transport layer owns message
// delivery, ordering, timeouts, and cancellation. Transitions:
//
//	Uninitialized -> SharesDistributed -> SharesVerified -> Combined
//
// with any verification failure moving to Aborted and discarding every piece
// of secret state for the run. Nothing survives an aborted run; a restart
// begins from scratch.
type KeygenSession struct {
	curve         Curve
	participantID ParticipantIndex
	participants  []ParticipantIndex
	threshold     int

	state      SessionState
	polynomial *Polynomial
	commitment *FeldmanCommitment
	received   map[ParticipantIndex]Scalar
	constants  map[ParticipantIndex]Point
}

// NewKeygenSession creates a session for the local participant.
func NewKeygenSession(curve Curve, participantID ParticipantIndex, participants []ParticipantIndex, threshold int) (*KeygenSession, error) {
	if err := ValidateThresholdConfig(threshold, participants, participantID); err != nil {
		return nil, err
	}

	return &KeygenSession{
		curve:         curve,
		participantID: participantID,
		participants:  append([]ParticipantIndex(nil), participants...),
		threshold:     threshold,
		state:         StateUninitialized,
		received:      make(map[ParticipantIndex]Scalar, len(participants)),
		constants:     make(map[ParticipantIndex]Point, len(participants)),
	}, nil
}

// State returns the current session state.
func (s *KeygenSession) State() SessionState {
	return s.state
}

// GenerateShares samples the local secret contribution and its polynomial,
// publishes Feldman commitments, and produces one share message per remote
// participant, keyed by recipient. The local share is retained internally.
// Transitions Uninitialized -> SharesDistributed.
func (s *KeygenSession) GenerateShares() (map[ParticipantIndex]*ShareMessage, error) {
	if s.state != StateUninitialized {
		return nil, ErrInvalidState.WithDetails("GenerateShares called in state %s", s.state)
	}

	contribution, err := s.curve.ScalarRandom()
	if err != nil {
		return nil, err
	}

	polynomial, err := NewRandomPolynomial(s.curve, s.threshold-1, contribution)
	if err != nil {
		return nil, err
	}

	commitment, err := NewFeldmanCommitment(s.curve, polynomial)
	if err != nil {
		polynomial.Zeroize()
		return nil, err
	}

	outgoing := make(map[ParticipantIndex]*ShareMessage, len(s.participants)-1)
	for _, pid := range s.participants {
		x, err := pid.ToScalar(s.curve)
		if err != nil {
			polynomial.Zeroize()
			for _, msg := range outgoing {
				msg.Zeroize()
			}
			if own := s.received[s.participantID]; own != nil {
				own.Zeroize()
				delete(s.received, s.participantID)
			}
			return nil, err
		}
		share := polynomial.Evaluate(x)

		if pid == s.participantID {
			// Our own share never leaves the session.
			s.received[pid] = share
			s.constants[pid] = commitment.Constant()
			continue
		}
		outgoing[pid] = &ShareMessage{
			From:        s.participantID,
			Share:       share,
			Commitments: commitment.Points(),
		}
	}

	s.polynomial = polynomial
	s.commitment = commitment
	s.state = StateSharesDistributed
	return outgoing, nil
}

// ReceiveShare verifies one incoming share against the sender's commitments
// and records it. A failed verification aborts the entire run: the offending
// participant is named in the error, all local secret state is discarded,
// and the protocol must restart from scratch. Once every participant's share
// has been received and verified the session transitions to SharesVerified.
func (s *KeygenSession) ReceiveShare(msg *ShareMessage) error {
	if s.state != StateSharesDistributed {
		return ErrInvalidState.WithDetails("ReceiveShare called in state %s", s.state)
	}
	if msg == nil || msg.Share == nil {
		return ErrInvalidShareMessage.WithDetails("empty share message")
	}
	if !s.isParticipant(msg.From) {
		return ErrInvalidParticipantID.WithDetails("sender %d is not in the participant set", msg.From)
	}
	if _, dup := s.received[msg.From]; dup {
		return ErrInvalidShareMessage.WithDetails("duplicate share from participant %d", msg.From)
	}
	if len(msg.Commitments) != s.threshold {
		s.abortRun()
		return ErrShareVerificationFailed.
			WithContext("participant", msg.From).
			WithDetails("expected %d commitment points, got %d", s.threshold, len(msg.Commitments))
	}

	ok, err := VerifyShare(s.curve, s.participantID, msg.Share, msg.Commitments)
	if err != nil {
		s.abortRun()
		return err
	}
	if !ok {
		s.abortRun()
		return ErrShareVerificationFailed.WithContext("participant", msg.From)
	}

	// The message stays caller-owned and may be wiped after delivery, so the
	// session keeps its own copy of the share.
	shareBytes := msg.Share.Bytes()
	share, err := s.curve.ScalarFromBytes(shareBytes)
	ZeroBytes(shareBytes)
	if err != nil {
		s.abortRun()
		return ErrInvalidShareMessage.WithCause(err)
	}

	s.received[msg.From] = share
	s.constants[msg.From] = msg.Commitments[0]

	if len(s.received) == len(s.participants) {
		s.state = StateSharesVerified
	}
	return nil
}

// CombineShares finalizes the run: the local secret share is the sum of all
// verified shares addressed to this participant, and the joint public key is
// the sum of every participant's zero-degree commitment. Transitions
// SharesVerified -> Combined and wipes the session's working secrets.
func (s *KeygenSession) CombineShares() (*KeygenResult, error) {
	if s.state != StateSharesVerified {
		return nil, ErrInvalidState.WithDetails("CombineShares called in state %s", s.state)
	}

	finalShare := s.curve.ScalarZero()
	for _, share := range s.received {
		finalShare = finalShare.Add(share)
	}

	groupPublicKey := s.curve.PointIdentity()
	for _, constant := range s.constants {
		groupPublicKey = groupPublicKey.Add(constant)
	}
	if groupPublicKey.IsIdentity() {
		finalShare.Zeroize()
		s.abortRun()
		return nil, ErrShareVerificationFailed.WithDetails("joint public key is the point at infinity")
	}

	publicKey, err := s.curve.BlindedBaseMul(finalShare)
	if err != nil {
		finalShare.Zeroize()
		s.abortRun()
		return nil, err
	}

	keyShare := &KeyShare{
		ParticipantID:  s.participantID,
		SecretShare:    finalShare,
		PublicKey:      publicKey,
		GroupPublicKey: groupPublicKey,
	}

	s.wipe()
	s.state = StateCombined

	return &KeygenResult{
		KeyShare:       keyShare,
		GroupPublicKey: groupPublicKey,
		Participants:   append([]ParticipantIndex(nil), s.participants...),
		Threshold:      s.threshold,
	}, nil
}

// Abort discards the run. The transport calls this when a remote participant
// stalls or disappears; verification failures call it internally. All secret
// state for the run is wiped; the session is terminal afterwards.
func (s *KeygenSession) Abort() {
	if s.state == StateCombined || s.state == StateAborted {
		return
	}
	s.abortRun()
}

func (s *KeygenSession) abortRun() {
	s.wipe()
	s.state = StateAborted
}

// wipe clears the session's secret-bearing state: the polynomial (and with
// it every coefficient) and all received shares.
func (s *KeygenSession) wipe() {
	if s.polynomial != nil {
		s.polynomial.Zeroize()
		s.polynomial = nil
	}
	for pid, share := range s.received {
		if share != nil {
			share.Zeroize()
		}
		delete(s.received, pid)
	}
}

func (s *KeygenSession) isParticipant(pid ParticipantIndex) bool {
	for _, p := range s.participants {
		if p == pid {
			return true
		}
	}
	return false
}
