package helpers

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"slices"
	"strings"
)

// FilterLinks reads one URL per line from r and keeps the http(s) URLs whose
// host is in allowedHosts. Blank lines and lines starting with # are ignored,
// duplicates are dropped and file order is preserved.
func FilterLinks(r io.Reader, allowedHosts []string) ([]string, error) {
	var (
		links []string
		seen  = make(map[string]struct{})
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !IsAllowedLink(line, allowedHosts) {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		links = append(links, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read links: %w", err)
	}

	return links, nil
}

// LoadLinks reads and filters the link file at path
func LoadLinks(path string, allowedHosts []string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open links file: %w", err)
	}
	defer f.Close()

	return FilterLinks(f, allowedHosts)
}

// IsAllowedLink reports whether rawURL is an http(s) URL on an allowed host
func IsAllowedLink(rawURL string, allowedHosts []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return slices.ContainsFunc(allowedHosts, func(h string) bool {
		return strings.EqualFold(h, host)
	})
}
