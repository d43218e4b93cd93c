package feeds

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

// AMFIFetcher downloads the AMFI NAV file.
type AMFIFetcher struct {
	client *http.Client
	url    string
}

// NewAMFIFetcher creates a fetcher for url, or the public AMFI file when
// url is empty.
func NewAMFIFetcher(client *http.Client, url string) *AMFIFetcher {
	if url == "" {
		url = DefaultAMFIURL
	}
	return &AMFIFetcher{client: client, url: url}
}

// FetchNAVs returns the latest NAV of every scheme in the file.
func (f *AMFIFetcher) FetchNAVs(ctx context.Context) (map[string]decimal.Decimal, error) {
	body, err := get(ctx, f.client, f.url)
	if err != nil {
		return nil, err
	}
	return ParseNAVAll(bytes.NewReader(body))
}

// ParseNAVAll parses the semicolon separated NAV file:
//
//	Scheme Code;ISIN Div Payout/ISIN Growth;ISIN Div Reinvestment;Scheme Name;Net Asset Value;Date
//
// Header, section title, and blank lines have fewer fields and are
// skipped, as are rows whose NAV is not a positive number ("N.A.").
func ParseNAVAll(r io.Reader) (map[string]decimal.Decimal, error) {
	navs := make(map[string]decimal.Decimal)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		parts := strings.Split(sc.Text(), ";")
		if len(parts) < 5 {
			continue
		}
		code := strings.TrimSpace(parts[0])
		if code == "" {
			continue
		}
		nav, err := decimal.NewFromString(strings.TrimSpace(parts[4]))
		if err != nil || !nav.IsPositive() {
			continue
		}
		navs[code] = nav
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return navs, nil
}
