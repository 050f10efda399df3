package sourcing

import (
	"context"
	"errors"

	"github.com/chemsource/sourcing/v1/vectordb"
)

// Outcome tells EnsureProfile callers whether the profile was just written.
type Outcome int

const (
	Existing Outcome = iota
	Created
)

func (o Outcome) String() string {
	if o == Created {
		return "created"
	}
	return "existing"
}

// Service implements profile and sell-side product operations.
type Service struct {
	Base
}

// NewService creates a Service.
func NewService(p Params) *Service {
	return &Service{Base: NewBase(p)}
}

// Exact returns a copy of s that matches identity fields byte for byte
// instead of normalizing them first. It reaches records stored under a
// variant spelling, such as the Stored triple of an ErrFilterMismatch.
func (s *Service) Exact() *Service {
	c := *s
	c.exact = true
	return &c
}

// Bootstrap creates the profile and product namespaces with identity
// indexes when the store supports it.
func (s *Service) Bootstrap(ctx context.Context) error {
	ensurer, ok := s.Store.(vectordb.NamespaceEnsurer)
	if !ok {
		return nil
	}
	if err := ensurer.EnsureNamespace(ctx, s.Config.ProfilesNamespace, SellerFields.Keys()...); err != nil {
		return StoreError("ensure", s.Config.ProfilesNamespace, err)
	}
	keys := append(SellerFields.Keys(), ProductIDField)
	if err := ensurer.EnsureNamespace(ctx, s.Config.SellProductsNamespace, keys...); err != nil {
		return StoreError("ensure", s.Config.SellProductsNamespace, err)
	}
	return nil
}

// EnsureProfile returns the profile for t, creating it from defaults when
// none exists. Calling it again with the same triple returns Existing.
// A triple already shared by several profiles is ErrMultiMatch; none of them
// is picked.
func (s *Service) EnsureProfile(ctx context.Context, t Triple, defaults ProfileDefaults) (profile Profile, outcome Outcome, err error) {
	ctx, end := s.StartSpan(ctx, "sourcing.EnsureProfile", map[string]interface{}{"email": t.Email})
	defer func() { end(err) }()

	t = s.Normalize(t)
	filter, err := BuildIdentityFilter(SellerFields, t)
	if err != nil {
		return Profile{}, Existing, err
	}

	ns := s.Config.ProfilesNamespace
	match, err := s.ResolveUnique(ctx, ns, SellerFields, filter, t, "")
	switch {
	case err == nil:
		p, derr := decodeProfile(match)
		if derr != nil {
			return Profile{}, Existing, derr
		}
		return p, Existing, nil
	case errors.Is(err, ErrFilterMismatch):
		// the caller's normalized triple is what gets stored from now on
		var me *MatchError
		errors.As(err, &me)
		s.Log.Warn("creating profile next to a formatting variant", nil, map[string]interface{}{
			"namespace": ns,
			"filter":    filter.String(),
			"stored":    me.Stored,
		})
	case !errors.Is(err, ErrZeroMatch):
		return Profile{}, Existing, err
	}

	profile = Profile{
		StorageID:     NewStorageID(),
		SellerName:    t.CompanyName,
		SellerEmail:   t.Email,
		SellerContact: t.ContactNumber,
		Address:       defaults.Address,
		Region:        defaults.Region,
		Verified:      defaults.Verified,
		Rating:        defaults.Rating,
		PinCode:       defaults.PinCode,
		GSTNumber:     defaults.GSTNumber,
		CreatedAt:     s.Now(),
	}
	if err := s.Store.Upsert(ctx, ns, []vectordb.Record{{
		ID:       string(profile.StorageID),
		Metadata: profile.metadata(),
	}}); err != nil {
		return Profile{}, Existing, StoreError("upsert", ns, err)
	}

	s.Log.Info("profile created", nil, map[string]interface{}{
		"storage_id": profile.StorageID,
		"email":      t.Email,
		"company":    t.CompanyName,
	})
	return profile, Created, nil
}

// ListProfiles returns every company owned by email, in store order.
func (s *Service) ListProfiles(ctx context.Context, email string) (profiles []Profile, err error) {
	ctx, end := s.StartSpan(ctx, "sourcing.ListProfiles", map[string]interface{}{"email": email})
	defer func() { end(err) }()

	t := s.Normalize(Triple{Email: email})
	if t.Email == "" {
		return nil, &FieldError{Err: ErrIncompleteIdentity, Field: "email"}
	}

	matches, err := s.Find(ctx, s.Config.ProfilesNamespace, BuildFilter(SellerFields, t, ""))
	if err != nil {
		return nil, err
	}
	profiles = make([]Profile, 0, len(matches))
	for _, m := range matches {
		p, err := decodeProfile(m)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}
