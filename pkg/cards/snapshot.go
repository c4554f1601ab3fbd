package cards

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/richard-senior/cardstats/internal/logger"
	"github.com/richard-senior/cardstats/pkg/util"
)

// Snapshotter keeps a readable markdown copy of detail pages the parser rejected,
// so a layout change can be diagnosed without refetching
type Snapshotter struct {
	dir string
}

// NewSnapshotter writes snapshots under dir
func NewSnapshotter(dir string) *Snapshotter {
	return &Snapshotter{dir: dir}
}

// Save converts body to markdown and writes it to <dir>/<name>.md
func (s *Snapshotter) Save(name, pageURL string, body []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	domain, err := extractDomain(pageURL)
	if err != nil {
		logger.Warn("Failed to extract domain from URL:", err)
		domain = ""
	}

	markdown, err := htmltomarkdown.ConvertString(
		string(body),
		converter.WithDomain(domain),
	)
	if err != nil {
		return "", fmt.Errorf("failed to convert %s to markdown: %w", pageURL, err)
	}

	path := filepath.Join(s.dir, util.NormalizeIdentifier(name)+".md")
	content := fmt.Sprintf("<!-- %s -->\n\n%s\n", pageURL, markdown)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return path, nil
}

// extractDomain gives scheme://host of a url
func extractDomain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %q has no host", rawURL)
	}
	return u.Scheme + "://" + u.Host, nil
}
