package proposal

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Metadata is the decoded front matter of a proposal document. Well-known
// keys get typed fields; anything else lands in Extra under its literal
// key. Fields absent from the front matter stay zero and are omitted from
// the JSON encoding.
type Metadata struct {
	EIP           int
	Title         string
	Description   string
	Author        []string
	DiscussionsTo string
	Status        string
	Type          string
	Category      string
	Created       string
	Requires      []int
	Extra         map[string]string
}

// DecodeMetadata converts a front-matter block into Metadata. Each line is
// split at the first ": "; lines without the pattern are skipped. Decoding
// is total: malformed values simply leave the field absent.
func DecodeMetadata(front string) Metadata {
	var md Metadata
	for _, line := range strings.Split(front, "\n") {
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "eip":
			if n, err := strconv.Atoi(value); err == nil {
				md.EIP = n
			}
		case "title":
			md.Title = value
		case "description":
			md.Description = value
		case "author":
			md.Author = splitTrimmed(value)
		case "discussions-to":
			md.DiscussionsTo = value
		case "status":
			md.Status = value
		case "type":
			md.Type = value
		case "category":
			md.Category = value
		case "created":
			md.Created = value
		case "requires":
			md.Requires = parseRequires(value)
		default:
			if md.Extra == nil {
				md.Extra = make(map[string]string)
			}
			md.Extra[key] = value
		}
	}
	return md
}

func splitTrimmed(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func parseRequires(value string) []int {
	var out []int
	for _, seg := range strings.Split(value, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(seg))
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// MarshalJSON renders the metadata under its original front-matter keys,
// omitting absent fields and flattening Extra into the same object.
func (md Metadata) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, 10+len(md.Extra))
	for k, v := range md.Extra {
		obj[k] = v
	}
	if md.EIP != 0 {
		obj["eip"] = md.EIP
	}
	if md.Title != "" {
		obj["title"] = md.Title
	}
	if md.Description != "" {
		obj["description"] = md.Description
	}
	if len(md.Author) > 0 {
		obj["author"] = md.Author
	}
	if md.DiscussionsTo != "" {
		obj["discussions-to"] = md.DiscussionsTo
	}
	if md.Status != "" {
		obj["status"] = md.Status
	}
	if md.Type != "" {
		obj["type"] = md.Type
	}
	if md.Category != "" {
		obj["category"] = md.Category
	}
	if md.Created != "" {
		obj["created"] = md.Created
	}
	if len(md.Requires) > 0 {
		obj["requires"] = md.Requires
	}
	return json.Marshal(obj)
}
