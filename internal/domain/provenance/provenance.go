// Package provenance derives content-addressed tokens for screening
// results. The canonical serialization is the compatibility contract:
// identical deterministic fields always produce identical tokens, no
// matter which process or host computed them.
package provenance

import (
	"bytes"
	"encoding/json"

	"github.com/opencontainers/go-digest"

	"github.com/arguswatch/argus/internal/domain/model"
)

// Protocol tags the payload format covered by the content hash.
const Protocol = "argus/v1"

// Token format constants.
const (
	TokenPrefix  = "AR_"
	tokenHashLen = 43 // leading hex chars of the digest carried in the token
)

// Payload is the fixed field set extracted from a result, plus the
// content hash derived from it. CreatedAt is deliberately absent.
type Payload struct {
	Protocol    string       `json:"protocol"`
	Identifier  string       `json:"identifier"`
	Sanctions   int          `json:"sanctions"`
	Behavioral  int          `json:"behavioral"`
	Reputation  int          `json:"reputation"`
	FinalScore  int          `json:"final_score"`
	Status      model.Status `json:"status"`
	ContentHash string       `json:"content_hash"`
}

// Record pairs a payload with its derived token.
type Record struct {
	Payload Payload `json:"payload"`
	Token   string  `json:"token"`
}

// canonicalPayload fixes the hash input: exactly these keys, serialized
// in lexicographic key order. Field order here is the wire order; the
// content hash never covers itself.
type canonicalPayload struct {
	Behavioral int          `json:"behavioral"`
	FinalScore int          `json:"final_score"`
	Identifier string       `json:"identifier"`
	Protocol   string       `json:"protocol"`
	Reputation int          `json:"reputation"`
	Sanctions  int          `json:"sanctions"`
	Status     model.Status `json:"status"`
}

// CanonicalJSON returns the exact byte sequence the content hash covers:
// compact JSON with sorted keys, no HTML escaping, no trailing newline.
func CanonicalJSON(r model.Result) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	// Encoding a struct of ints and strings cannot fail.
	_ = enc.Encode(canonicalPayload{
		Behavioral: r.Behavioral,
		FinalScore: r.FinalScore,
		Identifier: r.Address,
		Protocol:   Protocol,
		Reputation: r.Reputation,
		Sanctions:  r.Sanctions,
		Status:     r.Status,
	})

	return bytes.TrimRight(buf.Bytes(), "\n")
}

// BuildPayload extracts the canonical field set from a result and
// attaches its SHA-256 content hash as lowercase hex.
func BuildPayload(r model.Result) Payload {
	dgst := digest.SHA256.FromBytes(CanonicalJSON(r))

	return Payload{
		Protocol:    Protocol,
		Identifier:  r.Address,
		Sanctions:   r.Sanctions,
		Behavioral:  r.Behavioral,
		Reputation:  r.Reputation,
		FinalScore:  r.FinalScore,
		Status:      r.Status,
		ContentHash: dgst.Encoded(),
	}
}

// TokenFromPayload derives the fixed-prefix token from the payload's
// content hash.
func TokenFromPayload(p Payload) string {
	hash := p.ContentHash
	if len(hash) > tokenHashLen {
		hash = hash[:tokenHashLen]
	}
	return TokenPrefix + hash
}

// BuildRecord composes BuildPayload and TokenFromPayload. It is the
// single entry point collaborators should call.
func BuildRecord(r model.Result) Record {
	payload := BuildPayload(r)
	return Record{
		Payload: payload,
		Token:   TokenFromPayload(payload),
	}
}
