package sourcing

import (
	"strings"
)

// Triple is the composite key of a company profile: one login email may own
// several companies, told apart by name and contact number.
type Triple struct {
	Email         string `json:"email"`
	CompanyName   string `json:"companyName"`
	ContactNumber string `json:"contactNumber"`
}

// NormalizePolicy controls how identity fields are canonicalized before they
// reach a filter or a stored record.
type NormalizePolicy struct {
	// FoldCompanyCase lowercases company names so that "ACME Co" and
	// "Acme Co" address the same company.
	FoldCompanyCase bool `yaml:"fold_company_case" mapstructure:"fold_company_case"`
}

// Normalize trims every field and collapses internal runs of whitespace to a
// single space. Company names are case-folded only when the policy says so.
func (t Triple) Normalize(p NormalizePolicy) Triple {
	out := Triple{
		Email:         collapseSpaces(t.Email),
		CompanyName:   collapseSpaces(t.CompanyName),
		ContactNumber: collapseSpaces(t.ContactNumber),
	}
	if p.FoldCompanyCase {
		out.CompanyName = strings.ToLower(out.CompanyName)
	}
	return out
}

// Complete reports whether all three fields are set.
func (t Triple) Complete() bool {
	return t.Email != "" && t.CompanyName != "" && t.ContactNumber != ""
}

// IsZero reports whether no field is set.
func (t Triple) IsZero() bool {
	return t == Triple{}
}

// Validate returns ErrIncompleteIdentity naming the first missing field.
func (t Triple) Validate() error {
	switch {
	case t.Email == "":
		return &FieldError{Err: ErrIncompleteIdentity, Field: "email"}
	case t.CompanyName == "":
		return &FieldError{Err: ErrIncompleteIdentity, Field: "companyName"}
	case t.ContactNumber == "":
		return &FieldError{Err: ErrIncompleteIdentity, Field: "contactNumber"}
	}
	return nil
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FieldNames maps a Triple onto the payload keys used by one namespace.
type FieldNames struct {
	Email   string
	Company string
	Contact string
}

var (
	// SellerFields are the identity keys on profiles and sell-side products.
	SellerFields = FieldNames{Email: "sellerEmail", Company: "sellerName", Contact: "sellerContact"}

	// BuyerFields are the identity keys on buy-list records.
	BuyerFields = FieldNames{Email: "email", Company: "companyName", Contact: "phoneNumber"}
)

// Extract reads the identity stored in a record's metadata. Missing or
// non-string fields come back empty.
func (f FieldNames) Extract(metadata map[string]any) Triple {
	p := Payload(metadata)
	return Triple{
		Email:         p.Lookup(f.Email),
		CompanyName:   p.Lookup(f.Company),
		ContactNumber: p.Lookup(f.Contact),
	}
}

// Put writes the identity into metadata.
func (f FieldNames) Put(metadata map[string]any, t Triple) {
	metadata[f.Email] = t.Email
	metadata[f.Company] = t.CompanyName
	metadata[f.Contact] = t.ContactNumber
}

// Keys returns the three payload keys, for index creation.
func (f FieldNames) Keys() []string {
	return []string{f.Email, f.Company, f.Contact}
}
