// Package httpjson is the JSON-over-HTTP transport shared by every source
// connector. It bounds each request with a timeout, throttles requests with
// a token bucket, honours Retry-After on 429 responses, retries transient
// failures, and classifies failures into typed errors.
package httpjson
