package httpapi

import (
	"github.com/chemsource/sourcing/v1/sourcing"
)

// identity is the triple as it arrives in a body or query string.
type identity struct {
	Email         string `json:"email" form:"email" binding:"trimmed"`
	CompanyName   string `json:"companyName" form:"companyName" binding:"trimmed"`
	ContactNumber string `json:"contactNumber" form:"contactNumber" binding:"trimmed"`
}

func (i identity) triple() sourcing.Triple {
	return sourcing.Triple{Email: i.Email, CompanyName: i.CompanyName, ContactNumber: i.ContactNumber}
}

// lookupQuery allows a partial identity; the service rejects what it cannot
// scope.
type lookupQuery struct {
	Email         string `form:"email" binding:"trimmed"`
	CompanyName   string `form:"companyName"`
	ContactNumber string `form:"contactNumber"`
}

func (q lookupQuery) triple() sourcing.Triple {
	return sourcing.Triple{Email: q.Email, CompanyName: q.CompanyName, ContactNumber: q.ContactNumber}
}

type ensureProfileRequest struct {
	identity
	sourcing.ProfileDefaults
}

type addProductRequest struct {
	identity
	ProductID            string   `json:"productId"`
	ProductName          string   `json:"productName" binding:"trimmed"`
	Description          string   `json:"description"`
	Category             string   `json:"category"`
	Price                float64  `json:"price" binding:"gte=0"`
	Size                 string   `json:"size"`
	Unit                 string   `json:"unit"`
	MinimumOrderQuantity int64    `json:"minimumOrderQuantity" binding:"gte=0"`
	Pictures             []string `json:"pictures"`
	Rating               float64  `json:"rating" binding:"gte=0,lte=5"`
}

func (r addProductRequest) fields() sourcing.ProductFields {
	return sourcing.ProductFields{
		ProductID:            sourcing.ProductID(r.ProductID),
		ProductName:          r.ProductName,
		Description:          r.Description,
		Category:             r.Category,
		Price:                r.Price,
		Size:                 r.Size,
		Unit:                 r.Unit,
		MinimumOrderQuantity: r.MinimumOrderQuantity,
		Pictures:             r.Pictures,
		Rating:               r.Rating,
	}
}

type updateProductRequest struct {
	identity
	Patch sourcing.ProductPatch `json:"patch"`
}

type buyItemRequest struct {
	identity
	ProductName string `json:"productName" binding:"trimmed"`
}
