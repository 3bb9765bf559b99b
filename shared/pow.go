package shared

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrInvalidInput = errors.New("invalid proof input")
	ErrInvalidProof = errors.New("invalid proof of work")
)

// Observer receives every computed (challenge, digest) pair.
type Observer func(challenge, digest string)

// IsValidProof checks whether the digest of challenge ends in `difficulty` '0' characters.
func IsValidProof(hash HashFunc, challenge string, difficulty uint, observe Observer) (bool, error) {
	if uint(len(challenge)) < difficulty {
		return false, fmt.Errorf("%w: challenge length %d is shorter than difficulty %d", ErrInvalidInput, len(challenge), difficulty)
	}

	digest := hash(challenge)
	if observe != nil {
		observe(challenge, digest)
	}
	return CheckTrailingZeros(digest, difficulty), nil
}

// CheckTrailingZeros checks if the last 'expected' characters of digest are all '0'.
func CheckTrailingZeros(digest string, expected uint) bool {
	if uint(len(digest)) < expected {
		return false
	}
	for i := 1; i <= int(expected); i++ {
		if digest[len(digest)-i] != '0' {
			return false
		}
	}
	return true
}

// FindProof finds the smallest nonce that solves the PoW challenge.
func FindProof(
	ctx context.Context,
	hash HashFunc,
	previousProof, previousHash string,
	difficulty uint,
) (uint64, error) {
	for nonce := uint64(0); ; nonce++ {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		ok, err := IsValidProof(hash, Challenge(previousProof, nonce, previousHash), difficulty, nil)
		if err != nil {
			return 0, err
		}
		if ok {
			return nonce, nil
		}
	}
}

// VerifyProof checks a proof found for (previousProof, previousHash) with a single hash.
func VerifyProof(hash HashFunc, previousProof, proof, previousHash string, difficulty uint) error {
	nonce, err := strconv.ParseUint(proof, 10, 64)
	if err != nil || strconv.FormatUint(nonce, 10) != proof {
		return fmt.Errorf("%w: proof %q is not a non-negative integer", ErrInvalidProof, proof)
	}
	ok, err := IsValidProof(hash, Challenge(previousProof, nonce, previousHash), difficulty, nil)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: missing trailing zeros", ErrInvalidProof)
	}
	return nil
}
