package resolve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"eip_explorer/internal/fetch"
	"eip_explorer/internal/index"
	"eip_explorer/proposal"
)

type stubFetcher struct {
	docs  map[string]string
	calls []string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	doc, ok := f.docs[url]
	if !ok {
		return "", fmt.Errorf("unexpected fetch: %s", url)
	}
	return doc, nil
}

func emptyIndex(t *testing.T) *index.Index {
	t.Helper()
	ix, err := index.Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return ix
}

func indexWith(t *testing.T, catalog string) *index.Index {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "valid-eips.json"), []byte(catalog), 0o644); err != nil {
		t.Fatal(err)
	}
	ix, err := index.Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return ix
}

func TestResolveIndexHit(t *testing.T) {
	ix := indexWith(t, `{"1234": {"title": "Example", "status": "Final", "isERC": false, "markdownPath": "http://host/eip-1234.md"}}`)
	f := &stubFetcher{docs: map[string]string{
		"http://host/eip-1234.md": "---\ntitle: Example\nstatus: Final\n---\nBody text",
	}}
	r := New(ix, f)

	res, err := r.Resolve(context.Background(), "eip-1234", proposal.FamilyEIP)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Number != 1234 || res.Metadata.Title != "Example" || res.Metadata.Status != "Final" {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if res.Body != "Body text" || res.IsStandardsTrack || res.NotFound {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if len(f.calls) != 1 {
		t.Fatalf("expected a single fetch, got %v", f.calls)
	}
}

func TestResolveFallbackToEIP(t *testing.T) {
	f := &stubFetcher{docs: map[string]string{
		"https://raw.githubusercontent.com/ethereum/ERCs/master/ERCS/erc-7702.md": fetch.SentinelNotFound,
		"https://raw.githubusercontent.com/ethereum/EIPs/master/EIPS/eip-7702.md": "---\ntitle: Set EOA account code\n---\nbody",
	}}
	r := New(emptyIndex(t), f)

	res, err := r.Resolve(context.Background(), "7702", proposal.FamilyEIP)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.IsStandardsTrack {
		t.Fatal("fallback document must not be marked standards-track")
	}
	if res.Metadata.Title != "Set EOA account code" || res.NotFound {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if len(f.calls) != 2 {
		t.Fatalf("expected ERC probe then EIP probe, got %v", f.calls)
	}
}

func TestResolveERCPreferred(t *testing.T) {
	f := &stubFetcher{docs: map[string]string{
		"https://raw.githubusercontent.com/ethereum/ERCs/master/ERCS/erc-20.md": "---\ntitle: Token Standard\n---\nbody",
	}}
	r := New(emptyIndex(t), f)

	res, err := r.Resolve(context.Background(), "20", proposal.FamilyEIP)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !res.IsStandardsTrack || res.Metadata.Title != "Token Standard" {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if len(f.calls) != 1 {
		t.Fatalf("expected a single fetch, got %v", f.calls)
	}
}

func TestResolveBothMissing(t *testing.T) {
	f := &stubFetcher{docs: map[string]string{
		"https://raw.githubusercontent.com/ethereum/ERCs/master/ERCS/erc-99999.md": fetch.SentinelNotFound,
		"https://raw.githubusercontent.com/ethereum/EIPs/master/EIPS/eip-99999.md": fetch.SentinelNotFound,
	}}
	r := New(emptyIndex(t), f)

	res, err := r.Resolve(context.Background(), "99999", proposal.FamilyEIP)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !res.NotFound {
		t.Fatalf("expected not-found resolution, got %+v", res)
	}
}

func TestResolveInvalidToken(t *testing.T) {
	r := New(emptyIndex(t), &stubFetcher{})
	_, err := r.Resolve(context.Background(), "EIP-1234", proposal.FamilyEIP)
	if !errors.Is(err, proposal.ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}
}
