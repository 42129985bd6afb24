// Package resolve turns a route token into a fully decoded proposal
// document: catalog lookup, network fallback for unindexed numbers, then
// front-matter extraction and metadata decoding.
package resolve

import (
	"context"
	"fmt"

	"eip_explorer/internal/fetch"
	"eip_explorer/internal/index"
	"eip_explorer/internal/metrics"
	"eip_explorer/proposal"
)

const (
	ercRawURLFormat = "https://raw.githubusercontent.com/ethereum/ERCs/master/ERCS/erc-%d.md"
	eipRawURLFormat = "https://raw.githubusercontent.com/ethereum/EIPs/master/EIPS/eip-%d.md"
)

// Resolution is the outcome of resolving one proposal token.
type Resolution struct {
	Number           int               `json:"number"`
	Family           proposal.Family   `json:"family"`
	Metadata         proposal.Metadata `json:"metadata"`
	Body             string            `json:"markdown"`
	MarkdownURL      string            `json:"markdownUrl"`
	IsStandardsTrack bool              `json:"isERC"`
	NotFound         bool              `json:"notFound"`
}

// Resolver consults the catalog first and probes conventional upstream
// locations for numbers the offline builder has not indexed yet.
type Resolver struct {
	index   *index.Index
	fetcher fetch.Fetcher
}

func New(ix *index.Index, fetcher fetch.Fetcher) *Resolver {
	return &Resolver{index: ix, fetcher: fetcher}
}

// Resolve normalizes the token for the family, locates the document, and
// decodes it. An invalid token propagates proposal.ErrInvalidIdentifier; a
// missing document is not an error — the sentinel body travels out with
// NotFound set so callers render a not-found state. Only transport
// failures return errors.
func (r *Resolver) Resolve(ctx context.Context, token string, fam proposal.Family) (Resolution, error) {
	no, err := proposal.ExtractNumber(token, fam.Prefix())
	if err != nil {
		return Resolution{}, err
	}

	res := Resolution{Number: no, Family: fam, IsStandardsTrack: true}
	var doc string
	if entry, ok := r.index.Lookup(fam, no); ok {
		res.MarkdownURL = entry.MarkdownPath
		res.IsStandardsTrack = entry.IsERC
		doc, err = r.fetcher.Fetch(ctx, entry.MarkdownPath)
		if err != nil {
			return res, err
		}
	} else {
		// Not indexed yet (freshly merged proposal). Most of these are
		// ERCs, so probe the ERC location before the EIP one. The second
		// fetch only happens after a confirmed not-found, never on a
		// transport error.
		res.MarkdownURL = fmt.Sprintf(ercRawURLFormat, no)
		doc, err = r.fetcher.Fetch(ctx, res.MarkdownURL)
		if err != nil {
			return res, err
		}
		if fetch.IsNotFound(doc) {
			res.MarkdownURL = fmt.Sprintf(eipRawURLFormat, no)
			res.IsStandardsTrack = false
			doc, err = r.fetcher.Fetch(ctx, res.MarkdownURL)
			if err != nil {
				return res, err
			}
		}
	}

	front, body := proposal.ExtractFrontMatter(doc)
	res.Metadata = proposal.DecodeMetadata(front)
	res.Body = body
	res.NotFound = fetch.IsNotFound(doc)
	metrics.IncResolutions()
	return res, nil
}

// ResolveNumber resolves an already-numeric identifier.
func (r *Resolver) ResolveNumber(ctx context.Context, no int, fam proposal.Family) (Resolution, error) {
	return r.Resolve(ctx, fmt.Sprintf("%d", no), fam)
}
