package keycore

// MessageHashSize is the required length of a message digest. The core is
// hash-algorithm-agnostic; whatever produced the digest, it must be exactly
// this long.
const MessageHashSize = 32

// ValidateMessageHash checks the caller-supplied digest length. Anything
// other than 32 bytes is a contract violation, not a verification failure.
func ValidateMessageHash(hash []byte) error {
	if len(hash) != MessageHashSize {
		return ErrInvalidMessageHash.WithDetails("got %d bytes", len(hash))
	}
	return nil
}

// ValidateThresholdConfig checks a threshold/participant-set configuration
// for a keygen run: 1 < t <= n, positive distinct participant indices, and
// the local participant a member of the set.
func ValidateThresholdConfig(threshold int, participants []ParticipantIndex, self ParticipantIndex) error {
	if threshold <= 1 {
		return ErrInvalidThreshold.WithDetails("threshold %d must be greater than 1", threshold)
	}
	if threshold > len(participants) {
		return ErrInvalidThreshold.WithDetails(
			"threshold %d exceeds participant count %d", threshold, len(participants))
	}

	seen := make(map[ParticipantIndex]bool, len(participants))
	for _, pid := range participants {
		if pid == 0 {
			return ErrInvalidParticipantID.WithDetails("participant index 0 is reserved for the secret")
		}
		if seen[pid] {
			return ErrDuplicateParticipants.WithContext("participant", pid)
		}
		seen[pid] = true
	}

	if !seen[self] {
		return ErrInvalidParticipantID.WithDetails("local participant %d is not in the participant set", self)
	}
	return nil
}
