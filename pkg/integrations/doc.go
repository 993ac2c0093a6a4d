// Package integrations provides HTTP clients for the services thoughttree
// reads trees from.
//
// # Overview
//
// [Client] is the shared transport: default headers, JSON encoding,
// status-code classification, retry with backoff for transient failures,
// and response caching through [cache.Cache]. Service-specific clients
// live in subpackages:
//
//   - [movesvc]: the move-selection service that returns tree-of-thought
//     responses
//
// # Errors
//
// [ErrNotFound] is returned for 404 responses. [ErrNetwork] wraps
// connection failures and non-2xx statuses; connection failures and 5xx
// responses are additionally wrapped with [cache.Retryable] so that
// [Client.Cached] retries them.
//
// [movesvc]: github.com/matzehuels/thoughttree/pkg/integrations/movesvc
package integrations
