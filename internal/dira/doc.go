// Package dira fetches lottery subscriber counts from the housing ministry's
// "Dira Behanaa" API.
//
// Client issues one request per (project, lottery) pair and decodes the reply
// into an explicit schema. Aggregator drives a Fetcher over many lotteries in
// strictly sequential chunks of BatchSize concurrent calls, which caps the
// number of requests in flight against the public endpoint. CachingFetcher
// wraps any Fetcher with a TTL cache of earlier results.
package dira
