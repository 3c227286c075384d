package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs are lexicographically sortable by
// creation time, which keeps notification and reminder partition keys cheap
// to generate without a coordination step.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
