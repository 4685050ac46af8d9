package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const namespace = "go-folio"

// UUID derives a deterministic UUID from a stable key using go-hashid.
// Keys are case sensitive; callers prefix them by entity kind.
func UUID(key string) uuid.UUID {
	if strings.TrimSpace(key) == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(key, hashid.WithHashAlgorithm(hashid.SHA256))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
	}
	return uid
}

// DocumentUUID is the id of the document stored under sourcePath.
func DocumentUUID(sourcePath string) uuid.UUID {
	return UUID(namespace + ":document:" + strings.TrimSpace(sourcePath))
}

// AssetUUID is the id of an uploaded asset, keyed by its public id.
func AssetUUID(publicID string) uuid.UUID {
	return UUID(namespace + ":asset:" + strings.TrimSpace(publicID))
}
