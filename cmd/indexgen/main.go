// Command indexgen builds the per-family proposal catalogs consumed by the
// serving index. It walks local checkouts of the upstream proposal repos,
// optionally folds in drafts from open pull requests, and rewrites the
// JSON catalog files atomically so a running service can hot-reload them.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"eip_explorer/internal/index"
	"eip_explorer/proposal"
)

const maxRetries = 5

type source struct {
	dir    string
	prefix string
	isERC  bool
	rawURL string // fmt pattern taking the proposal number
}

func main() {
	eipsDir := flag.String("eips", "submodules/EIPs/EIPS", "local checkout of ethereum/EIPs EIPS dir")
	ercsDir := flag.String("ercs", "submodules/ERCs/ERCS", "local checkout of ethereum/ERCs ERCS dir")
	ripsDir := flag.String("rips", "", "local checkout of ethereum/RIPs RIPS dir")
	caipsDir := flag.String("caips", "", "local checkout of ChainAgnostic/CAIPs CAIPs dir")
	outDir := flag.String("out", "data", "output directory for the catalog files")
	withPRs := flag.Bool("prs", false, "merge draft proposals from open pull requests")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("mkdir %s: %v", *outDir, err)
	}

	// ERC checkout is scanned first: duplicated numbers exist in the EIP
	// tree as stubs without content, so the ERC file wins.
	eips := map[int]index.Entry{}
	collect(eips, source{
		dir: *ercsDir, prefix: "erc", isERC: true,
		rawURL: "https://raw.githubusercontent.com/ethereum/ERCs/master/ERCS/erc-%d.md",
	})
	collect(eips, source{
		dir: *eipsDir, prefix: "eip", isERC: false,
		rawURL: "https://raw.githubusercontent.com/ethereum/EIPs/master/EIPS/eip-%d.md",
	})

	rips := map[int]index.Entry{}
	if *ripsDir != "" {
		collect(rips, source{
			dir: *ripsDir, prefix: "rip", isERC: false,
			rawURL: "https://raw.githubusercontent.com/ethereum/RIPs/master/RIPS/rip-%d.md",
		})
	}

	caips := map[int]index.Entry{}
	if *caipsDir != "" {
		collect(caips, source{
			dir: *caipsDir, prefix: "caip", isERC: false,
			rawURL: "https://raw.githubusercontent.com/ChainAgnostic/CAIPs/main/CAIPs/caip-%d.md",
		})
	}

	if *withPRs {
		mergeOpenPRs(eips, "ethereum/ERCs", "ERCS/erc-", true)
		mergeOpenPRs(eips, "ethereum/EIPs", "EIPS/eip-", false)
	}

	writeCatalog(filepath.Join(*outDir, "valid-eips.json"), eips)
	writeCatalog(filepath.Join(*outDir, "valid-rips.json"), rips)
	writeCatalog(filepath.Join(*outDir, "valid-caips.json"), caips)
	log.Printf("catalogs written to %s (eips=%d rips=%d caips=%d)", *outDir, len(eips), len(rips), len(caips))
}

// collect scans one checkout for <prefix>-<n>.md files and decodes each
// front-matter block. Numbers already present in the map are skipped.
func collect(into map[int]index.Entry, src source) {
	if src.dir == "" {
		return
	}
	files, err := os.ReadDir(src.dir)
	if err != nil {
		log.Fatalf("read %s: %v", src.dir, err)
	}
	namePattern := regexp.MustCompile(`^` + src.prefix + `-(\d+)\.md$`)
	count := 0
	for _, f := range files {
		m := namePattern.FindStringSubmatch(f.Name())
		if m == nil {
			continue
		}
		no, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if _, exists := into[no]; exists {
			continue
		}
		data, err := os.ReadFile(filepath.Join(src.dir, f.Name()))
		if err != nil {
			log.Fatalf("read %s: %v", f.Name(), err)
		}
		front, _ := proposal.ExtractFrontMatter(string(data))
		meta := proposal.DecodeMetadata(front)
		title := meta.Title
		if title == "" {
			title = "Unknown Title"
		}
		into[no] = index.Entry{
			Title:        title,
			Status:       meta.Status,
			IsERC:        src.isERC,
			MarkdownPath: fmt.Sprintf(src.rawURL, no),
		}
		count++
	}
	log.Printf("scanned %s: %d %s files", src.dir, count, src.prefix)
}

// mergeOpenPRs lists open pull requests for repo and folds in proposals
// whose markdown file is added or changed by the PR. Existing catalog
// entries are never overwritten; drafts only fill gaps.
func mergeOpenPRs(into map[int]index.Entry, repo, pathPrefix string, isERC bool) {
	client := &http.Client{Timeout: 30 * time.Second}
	token := os.Getenv("GITHUB_TOKEN")

	listURL := fmt.Sprintf("https://api.github.com/repos/%s/pulls?state=open&per_page=100", repo)
	body, err := fetchWithRetry(client, listURL, token)
	if err != nil {
		log.Printf("list PRs for %s: %v (skipping)", repo, err)
		return
	}
	var prs []struct {
		Number int `json:"number"`
	}
	if err := json.Unmarshal(body, &prs); err != nil {
		log.Printf("parse PR list for %s: %v (skipping)", repo, err)
		return
	}

	merged := 0
	for _, pr := range prs {
		filesURL := fmt.Sprintf("https://api.github.com/repos/%s/pulls/%d/files?per_page=100", repo, pr.Number)
		body, err := fetchWithRetry(client, filesURL, token)
		if err != nil {
			log.Printf("PR %d files: %v (skipping)", pr.Number, err)
			continue
		}
		var files []struct {
			Filename string `json:"filename"`
			RawURL   string `json:"raw_url"`
		}
		if err := json.Unmarshal(body, &files); err != nil {
			log.Printf("parse PR %d files: %v (skipping)", pr.Number, err)
			continue
		}
		for _, f := range files {
			rest, ok := strings.CutPrefix(f.Filename, pathPrefix)
			if !ok {
				continue
			}
			noStr, ok := strings.CutSuffix(rest, ".md")
			if !ok {
				continue
			}
			no, err := strconv.Atoi(noStr)
			if err != nil {
				continue
			}
			if _, exists := into[no]; exists {
				continue
			}
			markdown, err := fetchWithRetry(client, f.RawURL, "")
			if err != nil {
				log.Printf("PR %d markdown for %d: %v (skipping)", pr.Number, no, err)
				continue
			}
			front, _ := proposal.ExtractFrontMatter(string(markdown))
			meta := proposal.DecodeMetadata(front)
			title := meta.Title
			if title == "" {
				title = "Unknown Title"
			}
			into[no] = index.Entry{
				Title:        title,
				Status:       meta.Status,
				IsERC:        isERC,
				PRNo:         pr.Number,
				MarkdownPath: f.RawURL,
			}
			merged++
		}
	}
	log.Printf("merged %d draft proposals from %s PRs", merged, repo)
}

// fetchWithRetry GETs url with up to maxRetries attempts, sleeping one
// second more after each failure.
func fetchWithRetry(client *http.Client, url, token string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		body, err := fetchOnce(client, url, token)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if attempt < maxRetries {
			log.Printf("fetch %s failed (attempt %d): %v, retrying", url, attempt, err)
			time.Sleep(time.Duration(attempt) * time.Second)
		}
	}
	return nil, lastErr
}

func fetchOnce(client *http.Client, url, token string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d for %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

// writeCatalog marshals the catalog with sorted numeric keys and swaps it
// into place with a rename so readers never observe a partial file.
func writeCatalog(path string, entries map[int]index.Entry) {
	nums := make([]int, 0, len(entries))
	for no := range entries {
		nums = append(nums, no)
	}
	sort.Ints(nums)

	var b strings.Builder
	b.WriteString("{\n")
	for i, no := range nums {
		entry, err := json.Marshal(entries[no])
		if err != nil {
			log.Fatalf("marshal entry %d: %v", no, err)
		}
		fmt.Fprintf(&b, "  %q: %s", strconv.Itoa(no), entry)
		if i < len(nums)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		log.Fatalf("write %s: %v", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		log.Fatalf("rename %s: %v", tmp, err)
	}
}
