package organizations

import (
	"context"
	"errors"
	"testing"

	"leadgate/platform/apperr"

	"github.com/google/uuid"
)

type fakeReader struct {
	orgs  map[uuid.UUID]Organization
	sites map[uuid.UUID]Site
	reads int
}

func newFakeReader() *fakeReader {
	return &fakeReader{orgs: map[uuid.UUID]Organization{}, sites: map[uuid.UUID]Site{}}
}

func (f *fakeReader) GetOrganization(_ context.Context, id uuid.UUID) (Organization, error) {
	f.reads++
	o, ok := f.orgs[id]
	if !ok {
		return Organization{}, apperr.NotFound("organization not found")
	}
	return o, nil
}

func (f *fakeReader) GetSite(_ context.Context, id uuid.UUID) (Site, error) {
	s, ok := f.sites[id]
	if !ok {
		return Site{}, apperr.NotFound("site not found")
	}
	return s, nil
}

func (f *fakeReader) addOrg(rank Rank, parent *uuid.UUID) Organization {
	auth := "AUTH-" + string(rank)
	o := Organization{ID: uuid.New(), Name: string(rank), Rank: rank, ParentID: parent, AuthorizationNumber: &auth, IsActive: true}
	f.orgs[o.ID] = o
	return o
}

func (f *fakeReader) addSite(orgID uuid.UUID, hq bool) Site {
	s := Site{ID: uuid.New(), OrganizationID: orgID, Name: "site", IsHeadquarters: hq, IsActive: true}
	f.sites[s.ID] = s
	return s
}

func TestResolveOwnerFranchiseSiteResolvesToParent(t *testing.T) {
	reader := newFakeReader()
	head := reader.addOrg(RankHeadOffice, nil)
	franchise := reader.addOrg(RankFranchise, &head.ID)
	site := reader.addSite(franchise.ID, true)

	owner, err := NewResolver(reader).ResolveOwner(context.Background(), site.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if owner.OrganizationID != head.ID {
		t.Fatalf("expected head office %s, got %s", head.ID, owner.OrganizationID)
	}
	if !owner.WasResolved {
		t.Fatal("expected WasResolved for a franchise site")
	}
	if owner.AuthorizationNumber == nil || *owner.AuthorizationNumber != "AUTH-HEAD_OFFICE" {
		t.Fatalf("expected parent's authorization number, got %v", owner.AuthorizationNumber)
	}
}

func TestResolveOwnerNonSubsidiaryOwnsItself(t *testing.T) {
	for _, rank := range []Rank{RankHeadOffice, RankStandalone} {
		reader := newFakeReader()
		org := reader.addOrg(rank, nil)
		site := reader.addSite(org.ID, false)

		owner, err := NewResolver(reader).ResolveOwner(context.Background(), site.ID)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", rank, err)
		}
		if owner.OrganizationID != org.ID || owner.WasResolved {
			t.Fatalf("%s: expected self ownership, got %+v", rank, owner)
		}
	}
}

func TestResolveOwnerWalksExactlyOneLevel(t *testing.T) {
	reader := newFakeReader()
	head := reader.addOrg(RankHeadOffice, nil)
	franchise := reader.addOrg(RankFranchise, &head.ID)
	branch := reader.addOrg(RankBranch, &franchise.ID)
	site := reader.addSite(branch.ID, false)

	owner, err := NewResolver(reader).ResolveOwner(context.Background(), site.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if owner.OrganizationID != franchise.ID {
		t.Fatalf("expected immediate parent %s, got %s", franchise.ID, owner.OrganizationID)
	}
}

func TestResolveOwnerOrphanedSubsidiaryFailsLoudly(t *testing.T) {
	reader := newFakeReader()
	branch := reader.addOrg(RankBranch, nil)
	site := reader.addSite(branch.ID, true)

	_, err := NewResolver(reader).ResolveOwner(context.Background(), site.ID)
	if !errors.Is(err, ErrOrphanedSubsidiary) {
		t.Fatalf("expected ErrOrphanedSubsidiary, got %v", err)
	}
}

func TestResolveOwnerIsIdempotent(t *testing.T) {
	reader := newFakeReader()
	head := reader.addOrg(RankHeadOffice, nil)
	franchise := reader.addOrg(RankFranchise, &head.ID)
	site := reader.addSite(franchise.ID, true)
	resolver := NewResolver(reader)

	first, err := resolver.ResolveOwner(context.Background(), site.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := resolver.ResolveOwner(context.Background(), site.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.OrganizationID != second.OrganizationID {
		t.Fatalf("expected identical owners, got %s and %s", first.OrganizationID, second.OrganizationID)
	}
	if reader.orgs[franchise.ID].ParentID == nil || *reader.orgs[franchise.ID].ParentID != head.ID {
		t.Fatal("resolution must not mutate the hierarchy")
	}
}

func TestResolveOwnerUnknownSite(t *testing.T) {
	_, err := NewResolver(newFakeReader()).ResolveOwner(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
