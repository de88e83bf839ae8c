// Package connectors builds the upstream source clients. Each subpackage
// speaks one provider's JSON API over the shared httpjson transport.
package connectors
