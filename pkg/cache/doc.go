// Package cache provides Redis-backed caching of upstream API page
// responses.
//
// ClinicalTrials.gov publishes no cache-validation contract (no ETag,
// no Expires), so entries carry a fixed TTL chosen by the client
// configuration. A cached page is served verbatim until it expires and
// is then refetched; there are no conditional requests.
package cache
