// Package glossary loads the glossary of harm-reduction terms used to
// annotate substance summaries. A glossary file overrides the built-in one.
package glossary
