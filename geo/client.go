package geo

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

// RecordUpdater receives resolved geo fields for a previously inserted
// attack record
type RecordUpdater interface {
	UpdateGeo(id int64, city, country, latitude, longitude string) error
}

// Client resolves public IPs to approximate locations through an external
// ip-api style endpoint. Lookups are best-effort: bounded by a short
// timeout, never retried, and failures are swallowed at this boundary.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	store      RecordUpdater
}

// NewClient creates a geo enrichment client writing into the given store
func NewClient(baseURL string, timeout time.Duration, store RecordUpdater) *Client {
	return &Client{
		baseURL:    baseURL,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		store:      store,
	}
}

type lookupResponse struct {
	Status  string  `json:"status"`
	City    string  `json:"city"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Enrich resolves the record's geo fields in a detached goroutine. It
// returns immediately; the triggering request's latency does not depend on
// the lookup. A record whose lookup fails keeps null geo fields forever.
func (c *Client) Enrich(recordID int64, ip string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Geo enrichment panic for record %d: %v", recordID, r)
			}
		}()
		c.enrich(recordID, ip)
	}()
}

func (c *Client) enrich(recordID int64, ip string) {
	if !IsPublicIP(ip) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", c.baseURL, ip), nil)
	if err != nil {
		log.Printf("Geo lookup request error for %s: %v", ip, err)
		return
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("Geo lookup failed for %s: %v", ip, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Geo lookup for %s returned status %d", ip, resp.StatusCode)
		return
	}

	var result lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("Geo lookup decode error for %s: %v", ip, err)
		return
	}
	if result.Status != "success" {
		return
	}

	latitude := strconv.FormatFloat(result.Lat, 'f', 4, 64)
	longitude := strconv.FormatFloat(result.Lon, 'f', 4, 64)

	if err := c.store.UpdateGeo(recordID, result.City, result.Country, latitude, longitude); err != nil {
		log.Printf("Geo update failed for record %d: %v", recordID, err)
	}
}

// IsPublicIP reports whether an address is worth looking up. Private,
// loopback, link-local and unparseable addresses resolve to nothing useful.
func IsPublicIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() || parsed.IsLinkLocalUnicast() {
		return false
	}
	return true
}
