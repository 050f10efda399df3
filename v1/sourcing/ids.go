package sourcing

import (
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// StorageID is the key the store addresses a record by. Deletes take only
// this type.
type StorageID string

// ProductID is the business identifier kept in a product's productId field.
// It is unrelated to the record's StorageID.
type ProductID string

// NewStorageID returns a fresh random UUID.
func NewStorageID() StorageID {
	return StorageID(uuid.NewString())
}

const productSuffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewProductID returns PRD-<unix millis>-<6 lowercase alphanumerics>.
func NewProductID(now time.Time) ProductID {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = productSuffixAlphabet[rand.IntN(len(productSuffixAlphabet))]
	}
	return ProductID("PRD-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + string(suffix))
}

func (id StorageID) String() string { return string(id) }

func (id ProductID) String() string { return string(id) }
