package shared

import "strconv"

// Challenge builds the string hashed for a given nonce.
// The order is fixed: previous proof, nonce, previous hash.
func Challenge(previousProof string, nonce uint64, previousHash string) string {
	return previousProof + strconv.FormatUint(nonce, 10) + previousHash
}
