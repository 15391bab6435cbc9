// Package civilindex implements a primary-index adapter: a civil
// birth/marriage/death registration index exposed over HTTP, offering
// search_primary and confirmation.
package civilindex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cacack/ancestry-research/internal/domain"
	"github.com/cacack/ancestry-research/internal/obs"
	"github.com/cacack/ancestry-research/internal/sources"
	"github.com/cacack/ancestry-research/internal/sources/breaker"
	"github.com/cacack/ancestry-research/internal/sources/ratelimit"
	"github.com/cacack/ancestry-research/internal/sources/retry"
)

// Client is a civil/parish registration-index adapter.
type Client struct {
	name       string
	baseURL    string
	apiKey     string
	httpClient *http.Client
	gate       *ratelimit.Gate
	cb         *breaker.Breaker
}

// Config configures a Client.
type Config struct {
	Name          string
	BaseURL       string
	APIKey        string
	RatePerSecond float64
	Burst         int
}

// New creates a civil-index Client. A sensible default rate limit applies
// when Config.RatePerSecond is zero.
func New(cfg Config) *Client {
	ratePerSecond := cfg.RatePerSecond
	if ratePerSecond <= 0 {
		ratePerSecond = 2
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 4
	}
	return &Client{
		name:       cfg.Name,
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		gate:       ratelimit.New(ratePerSecond, burst),
		cb:         breaker.New(time.Minute, 30*time.Second, 0.5, 5),
	}
}

func (c *Client) Name() string { return c.name }

// IsAvailable reports whether the source is configured and its breaker is
// not tripped open. "Configured" and "available" are deliberately distinct:
// a Client missing a base URL is never available.
func (c *Client) IsAvailable() bool {
	return c.baseURL != "" && c.cb.Allow()
}

func (c *Client) Capabilities() map[domain.SourceCapability]bool {
	return map[domain.SourceCapability]bool{
		domain.CapabilitySearchPrimary: true,
		domain.CapabilityConfirmation:  true,
	}
}

type birthSearchResponse struct {
	Results []struct {
		Surname             string `json:"surname"`
		Forenames           string `json:"forenames"`
		Year                int    `json:"year"`
		Quarter             int    `json:"quarter"`
		District            string `json:"district"`
		Volume              string `json:"volume"`
		Page                string `json:"page"`
		MotherMaidenSurname string `json:"mother_maiden_surname"`
	} `json:"results"`
}

// SearchBirths queries the index for birth registrations. district is
// optional; when empty the query is unscoped by district.
func (c *Client) SearchBirths(ctx context.Context, surname, given string, yearFrom, yearTo int, district string) ([]sources.BirthEntry, error) {
	q := url.Values{
		"surname":    {surname},
		"given_name": {given},
		"year_from":  {strconv.Itoa(yearFrom)},
		"year_to":    {strconv.Itoa(yearTo)},
	}
	if district != "" {
		q.Set("district", district)
	}

	var resp birthSearchResponse
	if err := c.get(ctx, "/births", q, &resp); err != nil {
		return nil, nil //nolint:nilerr // adapters never error for absent results
	}

	out := make([]sources.BirthEntry, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, sources.BirthEntry{
			Surname:             r.Surname,
			Forenames:           r.Forenames,
			Year:                r.Year,
			Quarter:             r.Quarter,
			District:            r.District,
			Volume:              r.Volume,
			Page:                r.Page,
			MotherMaidenSurname: r.MotherMaidenSurname,
		})
	}
	return out, nil
}

type marriageSearchResponse struct {
	Results []struct {
		GroomSurname   string `json:"groom_surname"`
		GroomForenames string `json:"groom_forenames"`
		BrideSurname   string `json:"bride_surname"`
		BrideForenames string `json:"bride_forenames"`
		Year           int    `json:"year"`
		Quarter        int    `json:"quarter"`
		District       string `json:"district"`
		Volume         string `json:"volume"`
		Page           string `json:"page"`
	} `json:"results"`
}

// SearchMarriages queries the index for marriage registrations, by groom or
// bride depending on which name the caller supplies as surname/given; the
// couple finder calls it by groom first, and by bride only when no groom-side
// hit scores 60 and the mother's given name is known.
func (c *Client) SearchMarriages(ctx context.Context, surname, given string, yearFrom, yearTo int, district string) ([]sources.MarriageEntry, error) {
	q := url.Values{
		"surname":   {surname},
		"given_name": {given},
		"year_from": {strconv.Itoa(yearFrom)},
		"year_to":   {strconv.Itoa(yearTo)},
	}
	if district != "" {
		q.Set("district", district)
	}

	var resp marriageSearchResponse
	if err := c.get(ctx, "/marriages", q, &resp); err != nil {
		return nil, nil //nolint:nilerr
	}

	out := make([]sources.MarriageEntry, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, sources.MarriageEntry{
			GroomSurname:   r.GroomSurname,
			GroomForenames: r.GroomForenames,
			BrideSurname:   r.BrideSurname,
			BrideForenames: r.BrideForenames,
			Year:           r.Year,
			Quarter:        r.Quarter,
			District:       r.District,
			Volume:         r.Volume,
			Page:           r.Page,
		})
	}
	return out, nil
}

type deathConfirmResponse struct {
	Found     bool   `json:"found"`
	Forenames string `json:"forenames"`
	Surname   string `json:"surname"`
	Year      int    `json:"year"`
	District  string `json:"district"`
}

// ConfirmDeath looks up a single death registration for the given name and
// year. Returns nil, nil when no matching record exists.
func (c *Client) ConfirmDeath(ctx context.Context, given, surname string, year int) (*sources.DeathEntry, error) {
	q := url.Values{
		"given_name": {given},
		"surname":    {surname},
		"year":       {strconv.Itoa(year)},
	}

	var resp deathConfirmResponse
	if err := c.get(ctx, "/deaths/confirm", q, &resp); err != nil {
		return nil, nil //nolint:nilerr
	}
	if !resp.Found {
		return nil, nil
	}
	return &sources.DeathEntry{
		Forenames: resp.Forenames,
		Surname:   resp.Surname,
		Year:      resp.Year,
		District:  resp.District,
	}, nil
}

// SearchPerson, GetParents, and ExtractFacts are not offered by a civil
// registration index; it carries no tree_traversal or person_search
// capability, so these are never called by the registry's capability-routed
// dispatch, but the Adapter interface still requires them to be satisfied.
func (c *Client) SearchPerson(ctx context.Context, q sources.PersonSearchQuery) ([]sources.PersonCandidate, error) {
	return nil, nil
}

func (c *Client) GetParents(ctx context.Context, personID string) (*sources.Parents, error) {
	return nil, nil
}

func (c *Client) ExtractFacts(ctx context.Context, personID string) (*sources.PersonFacts, error) {
	return nil, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	operation := strings.TrimPrefix(path, "/")
	start := time.Now()

	if !c.IsAvailable() {
		obs.AdapterCallsTotal.WithLabelValues(c.name, operation, "unavailable").Inc()
		return fmt.Errorf("civilindex: %s unavailable", c.name)
	}
	if err := c.gate.Wait(ctx); err != nil {
		return err
	}

	attempts := 0
	err := retry.Do(ctx, retry.Default(), func() error {
		if attempts > 0 {
			obs.AdapterRetriesTotal.WithLabelValues(c.name).Inc()
		}
		attempts++

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
		if err != nil {
			return err // permanent: malformed request
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.Transient(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return retry.Transient(fmt.Errorf("civilindex: %s status %d", c.name, resp.StatusCode))
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("civilindex: %s status %d", c.name, resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(out)
	})

	obs.AdapterCallDuration.WithLabelValues(c.name, operation).Observe(time.Since(start).Seconds())
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	obs.AdapterCallsTotal.WithLabelValues(c.name, operation, outcome).Inc()

	wasOpen := c.cb.State() == breaker.Open
	c.cb.Record(err == nil)
	if !wasOpen && c.cb.State() == breaker.Open {
		obs.BreakerTripsTotal.WithLabelValues(c.name).Inc()
	}
	return err
}
