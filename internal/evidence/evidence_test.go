package evidence

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestObjectKey(t *testing.T) {
	org := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	lead := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	want := "11111111-1111-1111-1111-111111111111/22222222-2222-2222-2222-222222222222/consent.json"
	if got := ObjectKey(org, lead); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestNopArchiver(t *testing.T) {
	var a Archiver = NopArchiver{}
	key, err := a.Archive(context.Background(), Snapshot{LeadID: uuid.New()})
	if err != nil || key != "" {
		t.Fatalf("expected no-op, got %q, %v", key, err)
	}
	u, err := a.DownloadURL(context.Background(), uuid.New(), uuid.New())
	if err != nil || u != "" {
		t.Fatalf("expected empty url, got %q, %v", u, err)
	}
}

type staticConfig struct{ endpoint string }

func (c staticConfig) GetMinIOEndpoint() string              { return c.endpoint }
func (c staticConfig) GetMinIOAccessKey() string             { return "minio" }
func (c staticConfig) GetMinIOSecretKey() string             { return "minio123" }
func (c staticConfig) GetMinIOUseSSL() bool                  { return false }
func (c staticConfig) GetMinioBucketConsentEvidence() string { return "consent-evidence" }
func (c staticConfig) IsMinIOEnabled() bool                  { return c.endpoint != "" }

func TestNewMinIOArchiverRequiresEndpoint(t *testing.T) {
	if _, err := NewMinIOArchiver(staticConfig{}); err == nil {
		t.Fatal("expected error when MinIO is not configured")
	}
	a, err := NewMinIOArchiver(staticConfig{endpoint: "localhost:9000"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.bucket != "consent-evidence" {
		t.Fatalf("unexpected bucket %q", a.bucket)
	}
}
