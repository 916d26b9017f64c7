// Package countries supplies the country list shown at the phone prompt.
//
// The remote list is optional: WithFallback bounds the fetch with a timeout
// and answers with a small built-in list on any failure, so the phone step
// never waits on the network.
package countries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/logging"
)

var ErrEmptyList = errors.New("country list is empty")

// Provider fetches reference countries.
type Provider interface {
	Fetch(ctx context.Context) ([]models.Country, error)
}

// Static is the built-in list.
var Static = []models.Country{
	{Name: "United States", Code: "US", DialCode: "+1", Flag: "🇺🇸"},
	{Name: "United Kingdom", Code: "GB", DialCode: "+44", Flag: "🇬🇧"},
	{Name: "India", Code: "IN", DialCode: "+91", Flag: "🇮🇳"},
	{Name: "Germany", Code: "DE", DialCode: "+49", Flag: "🇩🇪"},
	{Name: "France", Code: "FR", DialCode: "+33", Flag: "🇫🇷"},
	{Name: "Japan", Code: "JP", DialCode: "+81", Flag: "🇯🇵"},
	{Name: "Australia", Code: "AU", DialCode: "+61", Flag: "🇦🇺"},
	{Name: "Canada", Code: "CA", DialCode: "+1", Flag: "🇨🇦"},
}

// StaticProvider returns a copy of Static.
type StaticProvider struct{}

func (StaticProvider) Fetch(context.Context) ([]models.Country, error) {
	return append([]models.Country(nil), Static...), nil
}

// HTTPProvider GETs a JSON array of {name, code, dial_code, flag}.
type HTTPProvider struct {
	URL    string
	Client *http.Client
}

func NewHTTPProvider(url string) *HTTPProvider {
	return &HTTPProvider{URL: url, Client: http.DefaultClient}
}

func (p *HTTPProvider) Fetch(ctx context.Context) ([]models.Country, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch countries: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch countries: unexpected status %d", resp.StatusCode)
	}

	var out []models.Country
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode countries: %w", err)
	}

	valid := out[:0]
	for _, c := range out {
		if c.Name != "" && c.DialCode != "" {
			valid = append(valid, c)
		}
	}
	if len(valid) == 0 {
		return nil, ErrEmptyList
	}
	return valid, nil
}

type fallback struct {
	next    Provider
	timeout time.Duration
	log     logging.Logger
}

// WithFallback wraps next so Fetch never fails: errors and timeouts are
// logged and answered with Static.
func WithFallback(next Provider, timeout time.Duration, log logging.Logger) Provider {
	return &fallback{next: next, timeout: timeout, log: log}
}

func (f *fallback) Fetch(ctx context.Context) ([]models.Country, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	list, err := f.next.Fetch(ctx)
	if err != nil {
		f.log.Warn(ctx, "country list unavailable, using built-in list", "error", err)
		return StaticProvider{}.Fetch(ctx)
	}
	return list, nil
}

// ByDialCode finds the first country with the given dial code.
func ByDialCode(list []models.Country, dial string) (models.Country, bool) {
	for _, c := range list {
		if c.DialCode == dial {
			return c, true
		}
	}
	return models.Country{}, false
}
