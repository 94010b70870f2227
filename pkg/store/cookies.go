package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// ErrMalformedCookies is returned by Load when the sidecar is not valid JSON.
// The jar returned alongside it is empty and usable.
var ErrMalformedCookies = errors.New("malformed cookie file")

// Cookie is the persisted subset of a cookie.
type Cookie struct {
	Name    string  `json:"name"`
	Value   string  `json:"value"`
	Expires float64 `json:"expires"`
}

// Jar maps a cookie domain to its cookies.
type Jar map[string][]Cookie

// CookieStore reads and writes the cookie sidecar file. The sidecar only
// holds what Flow was asked to persist; it is not the engine's cookie jar.
type CookieStore struct {
	Path string
}

// Load reads the sidecar. A missing file is an empty jar; a malformed one is
// an empty jar plus ErrMalformedCookies.
func (s CookieStore) Load() (Jar, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Jar{}, nil
		}
		return Jar{}, fmt.Errorf("failed to read cookie file: %w", err)
	}

	jar := Jar{}
	if err := json.Unmarshal(data, &jar); err != nil {
		return Jar{}, fmt.Errorf("%w: %v", ErrMalformedCookies, err)
	}
	if jar == nil {
		jar = Jar{}
	}
	return jar, nil
}

// Save writes jar as indented JSON with non-ASCII text kept as-is.
func (s CookieStore) Save(jar Jar) error {
	if jar == nil {
		jar = Jar{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(jar); err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create cookie directory: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write cookie file: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace cookie file: %w", err)
	}
	return nil
}

// Persist replaces the cookies stored for domain and saves the sidecar. A
// malformed sidecar is overwritten.
func (s CookieStore) Persist(domain string, cookies []Cookie) error {
	jar, err := s.Load()
	if err != nil && !errors.Is(err, ErrMalformedCookies) {
		return err
	}

	if len(cookies) == 0 {
		delete(jar, domain)
	} else {
		jar[domain] = slices.Clone(cookies)
	}
	return s.Save(jar)
}

// ForSite returns the stored domains belonging to the same registrable site
// as rawURL, e.g. "www.example.co.uk" and ".example.co.uk" for
// "https://shop.example.co.uk/".
func (s CookieStore) ForSite(rawURL string) (Jar, error) {
	site, err := Site(rawURL)
	if err != nil {
		return nil, err
	}

	jar, err := s.Load()
	if err != nil {
		return nil, err
	}

	matched := Jar{}
	for domain, cookies := range jar {
		if ds, err := siteOf(domain); err == nil && ds == site {
			matched[domain] = cookies
		}
	}
	return matched, nil
}

// Domains returns the jar's domains sorted.
func (j Jar) Domains() []string {
	domains := make([]string, 0, len(j))
	for domain := range j {
		domains = append(domains, domain)
	}
	slices.Sort(domains)
	return domains
}

// Site returns the registrable domain (eTLD+1) of rawURL's host.
func Site(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("URL %q has no host", rawURL)
	}
	return siteOf(u.Hostname())
}

func siteOf(host string) (string, error) {
	host = strings.ToLower(strings.TrimPrefix(host, "."))
	site, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		// Hosts like "localhost" have no public suffix; they are their own site
		return host, nil
	}
	return site, nil
}
