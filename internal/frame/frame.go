// Package frame renders Farcaster frame documents: HTML pages whose meta
// tags drive the in-feed search widget.
package frame

import (
	"bytes"
	"fmt"
	"html/template"
)

var frameTmpl = template.Must(template.New("frame").Parse(`<!DOCTYPE html>
<html>
  <head>
    <title>EIP Explorer</title>
    <meta property="og:title" content="EIP Explorer" />
    <meta property="og:image" content="{{.ImageURL}}" />

    <meta name="fc:frame" content="vNext" />
    <meta name="fc:frame:image" content="{{.ImageURL}}" />
    <meta name="fc:frame:post_url" content="{{.PostURL}}" />
    <meta name="fc:frame:input:text" content="Enter EIP/ERC No" />
    <meta name="fc:frame:button:1" content="Search 🔎" />
{{- if .ProposalLabel}}
    <meta name="fc:frame:button:2" content="📙 {{.ProposalLabel}}" />
    <meta name="fc:frame:button:2:action" content="link" />
    <meta name="fc:frame:button:2:target" content="{{.ProposalURL}}" />
{{- end}}

    <meta name="of:version" content="vNext" />
    <meta name="of:accepts:anonymous" content="true" />
    <meta name="of:image" content="{{.ImageURL}}" />
    <meta name="of:post_url" content="{{.PostURL}}" />
    <meta name="of:input:text" content="Enter EIP/ERC No" />
    <meta name="of:button:1" content="Search 🔎" />
{{- if .ProposalLabel}}
    <meta name="of:button:2" content="📙 {{.ProposalLabel}}" />
    <meta name="of:button:2:action" content="link" />
    <meta name="of:button:2:target" content="{{.ProposalURL}}" />
{{- end}}
  </head>
  <body></body>
</html>
`))

type frameData struct {
	ImageURL      string
	PostURL       string
	ProposalLabel string
	ProposalURL   string
}

// Renderer builds frame documents rooted at the public host URL.
type Renderer struct {
	host string
}

func NewRenderer(host string) *Renderer {
	return &Renderer{host: host}
}

// Home renders the search frame shown before (or after invalid) input.
func (r *Renderer) Home() ([]byte, error) {
	return r.render(frameData{
		ImageURL: r.host + "/og/index.png",
		PostURL:  r.host + "/api/frame/home",
	})
}

// Proposal renders the result frame for one looked-up proposal. isERC
// picks the button label between ERC-n and EIP-n.
func (r *Renderer) Proposal(no int, isERC bool) ([]byte, error) {
	label := "EIP"
	if isERC {
		label = "ERC"
	}
	return r.render(frameData{
		ImageURL:      fmt.Sprintf("%s/api/og?eipNo=%d", r.host, no),
		PostURL:       r.host + "/api/frame/home",
		ProposalLabel: fmt.Sprintf("%s-%d", label, no),
		ProposalURL:   fmt.Sprintf("%s/eip/%d", r.host, no),
	})
}

func (r *Renderer) render(data frameData) ([]byte, error) {
	var buf bytes.Buffer
	if err := frameTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
