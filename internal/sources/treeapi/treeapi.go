// Package treeapi implements a tree-source adapter: a user-maintained
// genealogical graph exposed over HTTP, offering person_search and
// tree_traversal. Results are leads, never independent evidence on their
// own.
package treeapi

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

// Client is a tree-source (genealogy-graph API) adapter.
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

// New creates a tree-source Client.
func New(cfg Config) *Client {
	ratePerSecond := cfg.RatePerSecond
	if ratePerSecond <= 0 {
		ratePerSecond = 3
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 6
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

func (c *Client) IsAvailable() bool {
	return c.baseURL != "" && c.cb.Allow()
}

func (c *Client) Capabilities() map[domain.SourceCapability]bool {
	return map[domain.SourceCapability]bool{
		domain.CapabilityPersonSearch:  true,
		domain.CapabilityTreeTraversal: true,
	}
}

// SearchBirths, SearchMarriages, and ConfirmDeath are not offered by a tree
// source: it carries no search_primary or confirmation capability.
func (c *Client) SearchBirths(ctx context.Context, surname, given string, yearFrom, yearTo int, district string) ([]sources.BirthEntry, error) {
	return nil, nil
}

func (c *Client) SearchMarriages(ctx context.Context, surname, given string, yearFrom, yearTo int, district string) ([]sources.MarriageEntry, error) {
	return nil, nil
}

func (c *Client) ConfirmDeath(ctx context.Context, given, surname string, year int) (*sources.DeathEntry, error) {
	return nil, nil
}

type personSearchResponse struct {
	Results []struct {
		PersonID   string `json:"person_id"`
		GivenName  string `json:"given_name"`
		Surname    string `json:"surname"`
		BirthDate  string `json:"birth_date"`
		BirthPlace string `json:"birth_place"`
		DeathDate  string `json:"death_date"`
		DeathPlace string `json:"death_place"`
		FatherName string `json:"father_name"`
		MotherName string `json:"mother_name"`
	} `json:"results"`
}

// SearchPerson queries the tree graph for candidate persons matching q.
func (c *Client) SearchPerson(ctx context.Context, q sources.PersonSearchQuery) ([]sources.PersonCandidate, error) {
	values := url.Values{
		"given_name":  {q.GivenName},
		"surname":     {q.Surname},
		"birth_date":  {q.BirthDate},
		"birth_place": {q.BirthPlace},
	}
	if q.FatherSurname != "" {
		values.Set("father_surname", q.FatherSurname)
	}
	if q.MotherSurname != "" {
		values.Set("mother_surname", q.MotherSurname)
	}
	if q.MotherGivenName != "" {
		values.Set("mother_given_name", q.MotherGivenName)
	}
	count := q.Count
	if count <= 0 {
		count = 10
	}
	values.Set("count", strconv.Itoa(count))

	var resp personSearchResponse
	if err := c.get(ctx, "/persons/search", values, &resp); err != nil {
		return nil, nil //nolint:nilerr
	}

	out := make([]sources.PersonCandidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, sources.PersonCandidate{
			PersonID:   r.PersonID,
			GivenName:  r.GivenName,
			Surname:    r.Surname,
			BirthDate:  r.BirthDate,
			BirthPlace: r.BirthPlace,
			DeathDate:  r.DeathDate,
			DeathPlace: r.DeathPlace,
			FatherName: r.FatherName,
			MotherName: r.MotherName,
		})
	}
	return out, nil
}

type parentsResponse struct {
	Father *struct {
		PersonID string `json:"person_id"`
		Name     string `json:"name"`
	} `json:"father"`
	Mother *struct {
		PersonID string `json:"person_id"`
		Name     string `json:"name"`
	} `json:"mother"`
}

// GetParents resolves the recorded parents of personID in the tree graph.
func (c *Client) GetParents(ctx context.Context, personID string) (*sources.Parents, error) {
	var resp parentsResponse
	if err := c.get(ctx, "/persons/"+url.PathEscape(personID)+"/parents", nil, &resp); err != nil {
		return nil, nil //nolint:nilerr
	}

	out := &sources.Parents{}
	if resp.Father != nil {
		out.FatherID = resp.Father.PersonID
		out.FatherName = resp.Father.Name
	}
	if resp.Mother != nil {
		out.MotherID = resp.Mother.PersonID
		out.MotherName = resp.Mother.Name
	}
	return out, nil
}

type factsResponse struct {
	Census []struct {
		Year  int    `json:"year"`
		Place string `json:"place"`
	} `json:"census"`
	Other map[string][]string `json:"other"`
}

// ExtractFacts pulls structured facts (currently: census appearances) off a
// tree-source person record.
func (c *Client) ExtractFacts(ctx context.Context, personID string) (*sources.PersonFacts, error) {
	var resp factsResponse
	if err := c.get(ctx, "/persons/"+url.PathEscape(personID)+"/facts", nil, &resp); err != nil {
		return nil, nil //nolint:nilerr
	}

	facts := &sources.PersonFacts{Other: resp.Other}
	for _, cen := range resp.Census {
		facts.Census = append(facts.Census, sources.CensusFact{Year: cen.Year, Place: cen.Place})
	}
	return facts, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	operation := strings.TrimPrefix(path, "/")
	start := time.Now()

	if !c.IsAvailable() {
		obs.AdapterCallsTotal.WithLabelValues(c.name, operation, "unavailable").Inc()
		return fmt.Errorf("treeapi: %s unavailable", c.name)
	}
	if err := c.gate.Wait(ctx); err != nil {
		return err
	}

	fullPath := c.baseURL + path
	if q != nil {
		fullPath += "?" + q.Encode()
	}

	attempts := 0
	err := retry.Do(ctx, retry.Default(), func() error {
		if attempts > 0 {
			obs.AdapterRetriesTotal.WithLabelValues(c.name).Inc()
		}
		attempts++

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullPath, nil)
		if err != nil {
			return err
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.Transient(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("treeapi: %s not found", c.name)
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return retry.Transient(fmt.Errorf("treeapi: %s status %d", c.name, resp.StatusCode))
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("treeapi: %s status %d", c.name, resp.StatusCode)
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
