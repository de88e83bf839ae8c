// Package mediawiki resolves reference links against MediaWiki sites.
//
// Searcher maps a substance name to the best matching page through the
// opensearch API. Effects lists the effect pages a Semantic MediaWiki
// site (PsychonautWiki) attaches to a substance through the ask API.
package mediawiki
