package models

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/voxfetch/voxfetch/pkg/webclient"
)

// DefaultIndexURL is the upstream page listing downloadable model files.
const DefaultIndexURL = "https://huggingface.co/ggerganov/whisper.cpp/tree/main"

const maxIndexBytes = 4 << 20 // 4 MiB

// AvailableUpstream fetches the upstream index page and returns the ggml
// model filenames linked from it, deduplicated and sorted. An empty indexURL
// uses DefaultIndexURL.
func AvailableUpstream(ctx context.Context, client *webclient.Client, indexURL string) ([]string, error) {
	if indexURL == "" {
		indexURL = DefaultIndexURL
	}

	resp, err := client.Get(ctx, indexURL, map[string]string{"Accept": "text/html"})
	if err != nil {
		return nil, fmt.Errorf("fetch model index: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch model index: status %d", resp.StatusCode)
	}

	body := resp.Body
	if len(body) > maxIndexBytes {
		body = body[:maxIndexBytes]
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse model index: %w", err)
	}

	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		name := path.Base(strings.TrimSpace(href))
		if strings.HasPrefix(name, "ggml-") && strings.HasSuffix(name, ".bin") {
			seen[name] = struct{}{}
		}
	})

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
