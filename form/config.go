package form

import "time"

const (
	defaultProofField         = "proof"
	defaultPreviousProofField = "last_proof"
	defaultPreviousHashField  = "last_hash"
	defaultRequestTimeout     = 30 * time.Second
)

//nolint:lll
type Config struct {
	Action         string            `long:"action"          description:"URL the form is submitted to"`
	PreviousProof  string            `long:"previous-proof"  description:"Proof of the previous block, as rendered into the form"`
	PreviousHash   string            `long:"previous-hash"   description:"Hash of the previous block, as rendered into the form"`
	Fields         map[string]string `long:"field"           description:"Extra form field sent along with the proof (name:value)"`
	RequestTimeout time.Duration     `long:"request-timeout" description:"Timeout of the form submission request"`

	ProofField         string `long:"proof-field"          description:"Name of the field carrying the found proof"`
	PreviousProofField string `long:"previous-proof-field" description:"Name of the field carrying the previous proof"`
	PreviousHashField  string `long:"previous-hash-field"  description:"Name of the field carrying the previous hash"`
}

func DefaultConfig() Config {
	return Config{
		RequestTimeout:     defaultRequestTimeout,
		ProofField:         defaultProofField,
		PreviousProofField: defaultPreviousProofField,
		PreviousHashField:  defaultPreviousHashField,
	}
}
