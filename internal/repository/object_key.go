package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ObjectKey derives a storage key from the product, the timestamp of the
// newest record in the payload, and a random token. Re-running an ingest
// never overwrites an earlier object; replaying the exact same key is a
// no-op at the store.
func ObjectKey(product string, ts time.Time) string {
	return fmt.Sprintf("%s_%d_%s.json", product, ts.UTC().Unix(), uuid.NewString())
}
