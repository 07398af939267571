package organizations

import (
	"context"
	"testing"

	"leadgate/platform/apperr"

	"github.com/google/uuid"
)

type fakeStore struct {
	*fakeReader
	fakeLeadLister
	created []Organization
}

func (f *fakeStore) CreateOrganization(_ context.Context, o Organization) (Organization, error) {
	o.ID = uuid.New()
	o.IsActive = true
	f.created = append(f.created, o)
	f.orgs[o.ID] = o
	return o, nil
}

func (f *fakeStore) ListOrganizations(context.Context) ([]Organization, error) {
	return f.created, nil
}

func (f *fakeStore) CreateSite(_ context.Context, s Site) (Site, error) {
	s.ID = uuid.New()
	return s, nil
}

func (f *fakeStore) ListSites(context.Context, uuid.UUID) ([]Site, error) {
	return nil, nil
}

func TestCreateSubsidiaryRequiresParent(t *testing.T) {
	store := &fakeStore{fakeReader: newFakeReader()}
	svc := NewService(store)

	_, err := svc.Create(context.Background(), CreateOrganizationRequest{Name: "Lyon Nord", Rank: RankFranchise})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(store.created) != 0 {
		t.Fatal("nothing should be persisted")
	}
}

func TestCreateSubsidiaryWithUnknownParent(t *testing.T) {
	store := &fakeStore{fakeReader: newFakeReader()}
	parent := uuid.New()

	_, err := NewService(store).Create(context.Background(), CreateOrganizationRequest{Name: "Lyon Nord", Rank: RankBranch, ParentID: &parent})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateSanitizesName(t *testing.T) {
	store := &fakeStore{fakeReader: newFakeReader()}
	head := store.addOrg(RankHeadOffice, nil)

	got, err := NewService(store).Create(context.Background(), CreateOrganizationRequest{
		Name: "<b>Lyon</b> Nord", Rank: RankFranchise, ParentID: &head.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Lyon Nord" {
		t.Fatalf("expected sanitized name, got %q", got.Name)
	}
}
