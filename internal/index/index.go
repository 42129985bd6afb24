// Package index serves the static per-family proposal catalogs built
// offline by cmd/indexgen. The catalogs are read-only at request time; the
// watcher swaps a family wholesale when its JSON file is rewritten.
package index

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"eip_explorer/proposal"
)

// Entry is one catalog record: the pre-crawled identity of a proposal.
type Entry struct {
	Title        string `json:"title"`
	Status       string `json:"status,omitempty"`
	IsERC        bool   `json:"isERC"`
	PRNo         int    `json:"prNo,omitempty"`
	MarkdownPath string `json:"markdownPath"`
}

var familyFiles = map[proposal.Family]string{
	proposal.FamilyEIP:  "valid-eips.json",
	proposal.FamilyRIP:  "valid-rips.json",
	proposal.FamilyCAIP: "valid-caips.json",
}

// Index holds the loaded catalogs for all families.
type Index struct {
	dir string

	mu       sync.RWMutex
	families map[proposal.Family]map[int]Entry
	numbers  map[proposal.Family][]int
}

// Load reads the three family catalogs from dir. A missing file leaves that
// family empty rather than failing startup; a present but unparsable file
// is an error.
func Load(dir string) (*Index, error) {
	ix := &Index{
		dir:      dir,
		families: make(map[proposal.Family]map[int]Entry),
		numbers:  make(map[proposal.Family][]int),
	}
	for fam := range familyFiles {
		if err := ix.reload(fam); err != nil {
			return nil, err
		}
	}
	return ix, nil
}

func (ix *Index) reload(fam proposal.Family) error {
	path := filepath.Join(ix.dir, familyFiles[fam])
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("index: %s missing, %s catalog empty", path, fam)
			ix.swap(fam, map[int]Entry{})
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	raw := map[string]Entry{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	entries := make(map[int]Entry, len(raw))
	for key, entry := range raw {
		no, err := strconv.Atoi(key)
		if err != nil {
			log.Printf("index: skipping non-numeric key %q in %s", key, path)
			continue
		}
		entries[no] = entry
	}
	ix.swap(fam, entries)
	log.Printf("index: loaded %d %s entries from %s", len(entries), fam, path)
	return nil
}

func (ix *Index) swap(fam proposal.Family, entries map[int]Entry) {
	nums := make([]int, 0, len(entries))
	for no := range entries {
		nums = append(nums, no)
	}
	sort.Ints(nums)
	ix.mu.Lock()
	ix.families[fam] = entries
	ix.numbers[fam] = nums
	ix.mu.Unlock()
}

// Lookup returns the catalog entry for a proposal number.
func (ix *Index) Lookup(fam proposal.Family, no int) (Entry, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	e, ok := ix.families[fam][no]
	return e, ok
}

// Numbers returns the catalog's proposal numbers in ascending order.
func (ix *Index) Numbers(fam proposal.Family) []int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return append([]int(nil), ix.numbers[fam]...)
}

// Count returns the catalog size for a family.
func (ix *Index) Count(fam proposal.Family) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.families[fam])
}

// Neighbors returns the catalog numbers adjacent to no, for prev/next page
// navigation. A zero value means no neighbor on that side. The number
// itself does not need to be in the catalog.
func (ix *Index) Neighbors(fam proposal.Family, no int) (prev, next int) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	nums := ix.numbers[fam]
	i := sort.SearchInts(nums, no)
	if i > 0 {
		prev = nums[i-1]
	}
	if i < len(nums) && nums[i] == no {
		i++
	}
	if i < len(nums) {
		next = nums[i]
	}
	return prev, next
}
