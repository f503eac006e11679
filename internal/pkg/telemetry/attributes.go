package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys recorded by the shopping pipeline.
const (
	AttrShoppingOutcome  = attribute.Key("shopping.outcome")
	AttrShoppingListSize = attribute.Key("shopping.list_size")
	AttrCandidateStores  = attribute.Key("shopping.candidate_stores")
	AttrResolvedItems    = attribute.Key("shopping.resolved_items")
	AttrCoverExact       = attribute.Key("shopping.cover_exact")
)
