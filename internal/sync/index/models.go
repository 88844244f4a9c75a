package index

import (
	"github.com/google/uuid"
)

// Mirror is one (provider, repository, destination) triple that has been
// synchronized at least once.
type Mirror struct {
	ID          string
	Repository  string
	Provider    string
	Destination string
	LastRunID   string
	LastRunTime int64
}

// MirrorID derives a stable ID so repeated runs into the same destination
// share one mirrors row.
func MirrorID(provider, repository, destination string) string {
	key := provider + "\x00" + repository + "\x00" + destination
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}
