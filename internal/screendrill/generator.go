package screendrill

import (
	"strings"

	"github.com/google/uuid"
)

// Known fixtures mixed into every batch so each run also exercises
// addresses with pinned scores.
var fixtureAddresses = []string{
	"0x742d35cc6634c0532925a3b844bc9e7595f0beb",
	"vitalik.eth",
	"0xdeadbeef",
	"satoshi",
	"0x0000000000000000000000000000000000000000",
	"0x00000000219ab540356cbb839cbe05303d7705fa",
}

// fixtureEvery controls how often a fixture replaces a generated address.
const fixtureEvery = 100

// generateAddresses creates count wallet-style addresses. Most are
// synthetic hex strings derived from UUIDs; every hundredth slot carries
// a known fixture so golden addresses flow through the live pipeline.
func generateAddresses(count int) []string {
	addresses := make([]string, count)
	for i := range addresses {
		if i%fixtureEvery == 0 {
			addresses[i] = fixtureAddresses[(i/fixtureEvery)%len(fixtureAddresses)]
			continue
		}
		hex := strings.ReplaceAll(uuid.NewString(), "-", "")
		addresses[i] = "0x" + hex
	}
	return addresses
}
