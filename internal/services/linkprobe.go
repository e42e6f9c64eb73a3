package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/net/html"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/scsync/internal/models"
)

const (
	probeUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	probeTimeout   = 10 * time.Second
	hydrationMark  = "window.__sc_hydration"
	maxPageBytes   = 8 << 20
)

var purchaseURLPattern = regexp.MustCompile(`["']purchase_url["']\s*:\s*["']([^"']+)`)

// ProberOpts configures a [LinkProber].
type ProberOpts struct {
	Token           string        // Optional SoundCloud OAuth token
	RequestInterval time.Duration // Minimum spacing between page requests
	Transport       http.RoundTripper
	Logger          *log.Logger
}

// LinkProber scans a SoundCloud track page for the purchase link in its hydration payload.
type LinkProber struct {
	client  *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewLinkProber creates a prober. When a token is set, requests carry "Authorization: OAuth <token>".
func NewLinkProber(opts ProberOpts) *LinkProber {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	transport := base
	if opts.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token, TokenType: "OAuth"})
		transport = &oauth2.Transport{Source: ts, Base: base}
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &LinkProber{
		client:  &http.Client{Timeout: probeTimeout, Transport: transport},
		limiter: newLimiter(opts.RequestInterval),
		logger:  logger,
	}
}

// Probe fetches trackURL and extracts the purchase link.
//
// Network and HTTP failures yield [models.OutcomeFailed]; a page without a link yields
// [models.OutcomeUnavailable]. Probe never returns an error.
func (p *LinkProber) Probe(ctx context.Context, trackURL string) models.LinkResult {
	if strings.TrimSpace(trackURL) == "" {
		return models.LinkResult{Outcome: models.Unavailable("no url")}
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return models.LinkResult{Outcome: models.Failed(err.Error())}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return models.LinkResult{Outcome: models.Failed(fmt.Sprintf("failed to create request: %v", err))}
	}
	req.Header.Set("User-Agent", probeUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("purchase link probe failed", "url", trackURL, "error", err)
		return models.LinkResult{Outcome: models.Failed(fmt.Sprintf("request failed: %v", err))}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.LinkResult{Outcome: models.Failed(fmt.Sprintf("unexpected status %d", resp.StatusCode))}
	}

	link, err := ExtractPurchaseURL(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return models.LinkResult{Outcome: models.Failed(err.Error())}
	}
	if link == "" {
		return models.LinkResult{Outcome: models.Unavailable("no purchase link")}
	}
	return models.LinkResult{Outcome: models.OK(), Link: link}
}

// ExtractPurchaseURL parses an HTML page and returns the first purchase_url found in a script
// carrying the hydration payload, or "" when there is none.
func ExtractPurchaseURL(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	var found string
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "script" {
			if link := purchaseURLFromScript(scriptText(n)); link != "" {
				found = link
				return true
			}
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)

	return found, nil
}

func scriptText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func purchaseURLFromScript(src string) string {
	if !strings.Contains(src, hydrationMark) {
		return ""
	}
	m := purchaseURLPattern.FindStringSubmatch(src)
	if m == nil {
		return ""
	}
	return unescapeJSString(m[1])
}

// unescapeJSString decodes \uXXXX and \/ style escapes, returning raw unchanged when it is not a
// valid JSON string body.
func unescapeJSString(raw string) string {
	if !strings.Contains(raw, `\`) {
		return raw
	}
	var s string
	if err := json.Unmarshal([]byte(`"`+raw+`"`), &s); err != nil {
		return raw
	}
	return s
}
