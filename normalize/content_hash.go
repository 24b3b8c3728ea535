package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"

	"github.com/l3montree-dev/sbomguard/dtos"
)

// ContentHash identifies a component list independent of the declared order.
// Two documents with the same multiset of component identities share a hash.
func ContentHash(components []dtos.Component) string {
	identities := make([]string, len(components))
	for i, c := range components {
		identities[i] = c.Identity().String()
	}
	slices.Sort(identities)

	sum := sha256.Sum256([]byte(strings.Join(identities, "\n")))
	return hex.EncodeToString(sum[:])
}
