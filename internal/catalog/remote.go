package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// DefaultRemoteURL is the public fishwatch species endpoint.
const DefaultRemoteURL = "https://www.fishwatch.gov/api/species"

const defaultRemoteTimeout = 30 * time.Second

// Remote fetches species from a fishwatch-style JSON API.
type Remote struct {
	url    string
	client *http.Client
}

// RemoteOption configures a Remote.
type RemoteOption func(*Remote)

// WithHTTPClient replaces the default client (30s timeout).
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *Remote) { r.client = c }
}

// NewRemote creates a remote source. An empty url uses DefaultRemoteURL.
func NewRemote(url string, opts ...RemoteOption) *Remote {
	if url == "" {
		url = DefaultRemoteURL
	}
	r := &Remote{url: url, client: &http.Client{Timeout: defaultRemoteTimeout}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RemoteStatusError is returned for non-200 responses.
type RemoteStatusError struct {
	URL        string
	StatusCode int
}

func (e *RemoteStatusError) Error() string {
	return fmt.Sprintf("species fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

type remoteImage struct {
	Src string `json:"src"`
}

type remoteSpecies struct {
	Name           string          `json:"Species Name"`
	ScientificName string          `json:"Scientific Name"`
	Habitat        string          `json:"Habitat"`
	Location       string          `json:"Location"`
	Population     string          `json:"Population"`
	FishingRate    string          `json:"Fishing Rate"`
	Illustration   json.RawMessage `json:"Species Illustration Photo"`
	Gallery        json.RawMessage `json:"Image Gallery"`
}

// FetchAll downloads and cleans the species list. Entries without a name
// are skipped.
func (r *Remote) FetchAll(ctx context.Context) ([]Species, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build species request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("species fetch %s: %w", r.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &RemoteStatusError{URL: r.url, StatusCode: resp.StatusCode}
	}

	var raw []remoteSpecies
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode species from %s: %w", r.url, err)
	}

	out := make([]Species, 0, len(raw))
	for _, rs := range raw {
		name := stripHTML(rs.Name)
		if name == "" {
			continue
		}
		out = append(out, Species{
			Name:           name,
			ScientificName: stripHTML(rs.ScientificName),
			Habitat:        stripHTML(rs.Habitat),
			Location:       stripHTML(rs.Location),
			Population:     stripHTML(rs.Population),
			FishingRate:    stripHTML(rs.FishingRate),
			Illustration:   decodeImage(rs.Illustration),
			Gallery:        decodeGallery(rs.Gallery),
		})
	}
	return out, nil
}

// decodeImage accepts {"src": "..."} or a bare string.
func decodeImage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var img remoteImage
	if err := json.Unmarshal(raw, &img); err == nil {
		return strings.TrimSpace(img.Src)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return ""
}

// decodeGallery accepts a list of strings, a list of {"src"} objects or a
// single object.
func decodeGallery(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		if src := decodeImage(raw); src != "" {
			return []string{src}
		}
		return nil
	}
	var out []string
	for _, item := range items {
		if src := decodeImage(item); src != "" {
			out = append(out, src)
		}
	}
	return out
}

var blockTags = map[string]bool{
	"p": true, "br": true, "li": true, "div": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// stripHTML reduces an HTML fragment to its text with whitespace collapsed.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if blockTags[string(name)] {
				b.WriteByte(' ')
			}
		}
	}
}
