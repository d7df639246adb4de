package telemetry

const instrumentationName = "github.com/fishivo/geocore"

// Span names.
const (
	SpanMarkers        = "markers.compute"
	SpanSpotsInBounds  = "spots.in_bounds"
	SpanNavigationFix  = "navigation.ingest"
	SpanWarmupActivity = "warmup.markers"
)

// Attribute keys.
const (
	AttrZoom           = "geo.zoom"
	AttrTarget         = "geo.performance_target"
	AttrBounds         = "geo.bounds"
	AttrItems          = "geo.items"
	AttrClusters       = "geo.clusters"
	AttrCacheHit       = "cache.hit"
	AttrVesselID       = "vessel.id"
	AttrNavigationSess = "navigation.session_id"
)
