package summary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"eip_explorer/internal/fetch"
	"eip_explorer/internal/index"
	"eip_explorer/internal/resolve"
	"eip_explorer/internal/store"
	"eip_explorer/proposal"
)

func newLLMStub(t *testing.T, wantNo string, reply string, calls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			t.Errorf("missing bearer token")
		}
		var payload struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if len(payload.Messages) != 1 || !strings.Contains(payload.Messages[0].Content, "EIP/ERC no: "+wantNo) {
			t.Errorf("unexpected prompt: %+v", payload.Messages)
		}
		*calls++
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": reply}},
			},
		})
	}))
}

// newService builds a Service whose index holds one proposal in the given
// family catalog file, served by a local document host.
func newService(t *testing.T, llmURL, catalogFile, no, doc string) *Service {
	t.Helper()
	docHost := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(doc))
	}))
	t.Cleanup(docHost.Close)

	dir := t.TempDir()
	catalog := `{"` + no + `": {"title": "Entry", "isERC": false, "markdownPath": "` + docHost.URL + `/doc.md"}}`
	if err := os.WriteFile(filepath.Join(dir, catalogFile), []byte(catalog), 0o644); err != nil {
		t.Fatal(err)
	}
	ix, err := index.Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	r := resolve.New(ix, fetch.NewClient(5*time.Second))
	return NewService(Config{Model: "gpt-4o", BaseURL: llmURL, APIKey: "test-key"}, st, r)
}

func TestSummarizeGeneratesThenCaches(t *testing.T) {
	calls := 0
	llm := newLLMStub(t, "1559", "EIP-1559 introduces a burned base fee.", &calls)
	defer llm.Close()

	svc := newService(t, llm.URL, "valid-eips.json", "1559",
		"---\ntitle: Fee market change\nstatus: Final\n---\nBurns the base fee.")
	ctx := context.Background()

	got, err := svc.Summarize(ctx, 1559, proposal.FamilyEIP)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if got != "EIP-1559 introduces a burned base fee." {
		t.Fatalf("unexpected summary %q", got)
	}

	again, err := svc.Summarize(ctx, 1559, proposal.FamilyEIP)
	if err != nil {
		t.Fatalf("summarize cached: %v", err)
	}
	if again != got {
		t.Fatalf("cached summary differs: %q vs %q", again, got)
	}
	if calls != 1 {
		t.Fatalf("llm called %d times, want 1", calls)
	}
}

func TestSummarizeResolvesAgainstRequestedFamily(t *testing.T) {
	calls := 0
	llm := newLLMStub(t, "7212", "Adds a precompile for secp256r1 signatures.", &calls)
	defer llm.Close()

	// cataloged under valid-rips.json only; the EIP index has no 7212
	svc := newService(t, llm.URL, "valid-rips.json", "7212",
		"---\ntitle: Precompile for secp256r1\nstatus: Final\n---\nCurve support.")

	got, err := svc.Summarize(context.Background(), 7212, proposal.FamilyRIP)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if got != "Adds a precompile for secp256r1 signatures." {
		t.Fatalf("unexpected summary %q", got)
	}
	if calls != 1 {
		t.Fatalf("llm called %d times, want 1", calls)
	}
}

func TestSummarizeLLMFailure(t *testing.T) {
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer llm.Close()

	svc := newService(t, llm.URL, "valid-eips.json", "1559",
		"---\ntitle: Fee market change\nstatus: Final\n---\nBurns the base fee.")
	if _, err := svc.Summarize(context.Background(), 1559, proposal.FamilyEIP); err == nil {
		t.Fatal("expected error from llm failure")
	}
}
