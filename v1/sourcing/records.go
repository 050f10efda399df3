package sourcing

import (
	"slices"
	"time"

	"github.com/chemsource/sourcing/v1/vectordb"
)

// Payload keys for profiles and products, beyond the identity fields.
const (
	fieldAddress      = "address"
	fieldRegion       = "region"
	fieldVerified     = "verified"
	fieldRating       = "rating"
	fieldPinCode      = "pinCode"
	fieldGSTNumber    = "gstNumber"
	fieldCreatedAt    = "createdAt"
	fieldUpdatedAt    = "updatedAt"
	fieldProductName  = "productName"
	fieldDescription  = "description"
	fieldCategory     = "category"
	fieldPrice        = "price"
	fieldSize         = "size"
	fieldUnit         = "unit"
	fieldMinimumOrder = "minimumOrderQuantity"
	fieldPictures     = "pictures"
)

// Profile is one company owned by a login identity.
type Profile struct {
	StorageID     StorageID `json:"storageId"`
	SellerName    string    `json:"sellerName"`
	SellerEmail   string    `json:"sellerEmail"`
	SellerContact string    `json:"sellerContact"`
	Address       string    `json:"address"`
	Region        string    `json:"region"`
	Verified      bool      `json:"verified"`
	Rating        float64   `json:"rating"`
	PinCode       string    `json:"pinCode"`
	GSTNumber     string    `json:"gstNumber"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Identity returns the profile's triple.
func (p Profile) Identity() Triple {
	return Triple{Email: p.SellerEmail, CompanyName: p.SellerName, ContactNumber: p.SellerContact}
}

// ProfileDefaults are the non-identity fields of a newly created profile.
type ProfileDefaults struct {
	Address   string  `json:"address"`
	Region    string  `json:"region"`
	Verified  bool    `json:"verified"`
	Rating    float64 `json:"rating"`
	PinCode   string  `json:"pinCode"`
	GSTNumber string  `json:"gstNumber"`
}

func (p Profile) metadata() map[string]any {
	m := map[string]any{
		fieldAddress:   p.Address,
		fieldRegion:    p.Region,
		fieldVerified:  p.Verified,
		fieldRating:    p.Rating,
		fieldPinCode:   p.PinCode,
		fieldGSTNumber: p.GSTNumber,
		fieldCreatedAt: FormatTime(p.CreatedAt),
	}
	SellerFields.Put(m, p.Identity())
	return m
}

func decodeProfile(m vectordb.Match) (Profile, error) {
	d := decoder{p: Payload(m.Metadata)}
	p := Profile{
		StorageID:     StorageID(m.ID),
		SellerName:    d.string(SellerFields.Company),
		SellerEmail:   d.string(SellerFields.Email),
		SellerContact: d.string(SellerFields.Contact),
		Address:       d.string(fieldAddress),
		Region:        d.string(fieldRegion),
		Verified:      d.bool(fieldVerified),
		Rating:        d.float(fieldRating),
		PinCode:       d.string(fieldPinCode),
		GSTNumber:     d.string(fieldGSTNumber),
		CreatedAt:     d.time(fieldCreatedAt),
	}
	return p, d.err
}

// Product is a sell-side product record. Identity is copied from the owning
// profile onto every product because the store has no joins.
type Product struct {
	StorageID            StorageID `json:"storageId"`
	ProductID            ProductID `json:"productId"`
	ProductName          string    `json:"productName"`
	Description          string    `json:"description"`
	Category             string    `json:"category"`
	Price                float64   `json:"price"`
	Size                 string    `json:"size"`
	Unit                 string    `json:"unit"`
	MinimumOrderQuantity int64     `json:"minimumOrderQuantity"`
	Pictures             []string  `json:"pictures"`
	Rating               float64   `json:"rating"`
	Identity             Triple    `json:"identity"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// ProductFields are the caller-supplied fields of a new product. ProductID
// is optional; one is generated when empty.
type ProductFields struct {
	ProductID            ProductID `json:"productId,omitempty"`
	ProductName          string    `json:"productName"`
	Description          string    `json:"description"`
	Category             string    `json:"category"`
	Price                float64   `json:"price"`
	Size                 string    `json:"size"`
	Unit                 string    `json:"unit"`
	MinimumOrderQuantity int64     `json:"minimumOrderQuantity"`
	Pictures             []string  `json:"pictures"`
	Rating               float64   `json:"rating"`
}

// ProductPatch holds the fields an update may change. Nil fields are left
// alone. Identity and ids are not patchable.
type ProductPatch struct {
	ProductName          *string   `json:"productName,omitempty"`
	Description          *string   `json:"description,omitempty"`
	Category             *string   `json:"category,omitempty"`
	Price                *float64  `json:"price,omitempty"`
	Size                 *string   `json:"size,omitempty"`
	Unit                 *string   `json:"unit,omitempty"`
	MinimumOrderQuantity *int64    `json:"minimumOrderQuantity,omitempty"`
	Pictures             *[]string `json:"pictures,omitempty"`
	Rating               *float64  `json:"rating,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ProductPatch) IsEmpty() bool {
	return p == ProductPatch{}
}

// Apply writes the patch into prod and reports whether any value changed.
func (p ProductPatch) Apply(prod *Product) bool {
	changed := false
	setString := func(dst *string, src *string) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = true
		}
	}
	setFloat := func(dst *float64, src *float64) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = true
		}
	}

	setString(&prod.ProductName, p.ProductName)
	setString(&prod.Description, p.Description)
	setString(&prod.Category, p.Category)
	setFloat(&prod.Price, p.Price)
	setString(&prod.Size, p.Size)
	setString(&prod.Unit, p.Unit)
	if p.MinimumOrderQuantity != nil && prod.MinimumOrderQuantity != *p.MinimumOrderQuantity {
		prod.MinimumOrderQuantity = *p.MinimumOrderQuantity
		changed = true
	}
	if p.Pictures != nil && !slices.Equal(prod.Pictures, *p.Pictures) {
		prod.Pictures = slices.Clone(*p.Pictures)
		changed = true
	}
	setFloat(&prod.Rating, p.Rating)
	return changed
}

func (p Product) metadata() map[string]any {
	pictures := p.Pictures
	if pictures == nil {
		pictures = []string{}
	}
	m := map[string]any{
		ProductIDField:    string(p.ProductID),
		fieldProductName:  p.ProductName,
		fieldDescription:  p.Description,
		fieldCategory:     p.Category,
		fieldPrice:        p.Price,
		fieldSize:         p.Size,
		fieldUnit:         p.Unit,
		fieldMinimumOrder: p.MinimumOrderQuantity,
		fieldPictures:     pictures,
		fieldRating:       p.Rating,
		fieldCreatedAt:    FormatTime(p.CreatedAt),
		fieldUpdatedAt:    FormatTime(p.UpdatedAt),
	}
	SellerFields.Put(m, p.Identity)
	return m
}

func decodeProduct(m vectordb.Match) (Product, error) {
	d := decoder{p: Payload(m.Metadata)}
	p := Product{
		StorageID:            StorageID(m.ID),
		ProductID:            ProductID(d.string(ProductIDField)),
		ProductName:          d.string(fieldProductName),
		Description:          d.string(fieldDescription),
		Category:             d.string(fieldCategory),
		Price:                d.float(fieldPrice),
		Size:                 d.string(fieldSize),
		Unit:                 d.string(fieldUnit),
		MinimumOrderQuantity: d.int(fieldMinimumOrder),
		Pictures:             d.strings(fieldPictures),
		Rating:               d.float(fieldRating),
		Identity: Triple{
			Email:         d.string(SellerFields.Email),
			CompanyName:   d.string(SellerFields.Company),
			ContactNumber: d.string(SellerFields.Contact),
		},
		CreatedAt: d.time(fieldCreatedAt),
		UpdatedAt: d.time(fieldUpdatedAt),
	}
	return p, d.err
}
