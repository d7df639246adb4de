// Package clustering groups located items into map markers and clusters
// according to the current zoom level.
//
// Grouping is greedy single-link: items are visited in input order and the
// first unclustered item anchors a group that absorbs every later
// unclustered item within the zoom's radius. The result depends on input
// order, which callers must keep stable to get stable markers.
package clustering

import (
	"math"
	"sort"

	"github.com/fishivo/geocore/internal/core/domain"
	"github.com/fishivo/geocore/internal/pkg/geospatial"
)

// DefaultMinZoomForIndividual is the zoom at which clustering turns off.
const DefaultMinZoomForIndividual = 12

// gridThreshold is the input size from which the latitude-band pre-pass
// replaces the plain pairwise scan.
const gridThreshold = 256

// RadiusTiers holds the cluster radius in km for each zoom tier:
// Low for zoom <= 8, Medium for zoom <= 10, High above.
type RadiusTiers struct {
	Low    float64 `json:"low" mapstructure:"low"`
	Medium float64 `json:"medium" mapstructure:"medium"`
	High   float64 `json:"high" mapstructure:"high"`
}

// DefaultRadius is the balanced tier configuration.
var DefaultRadius = RadiusTiers{Low: 50, Medium: 20, High: 10}

// Options controls a clustering pass. Zero fields take defaults.
type Options struct {
	Zoom                 float64
	MinZoomForIndividual float64
	Radius               RadiusTiers
}

func (o Options) withDefaults() Options {
	if o.MinZoomForIndividual == 0 {
		o.MinZoomForIndividual = DefaultMinZoomForIndividual
	}
	if o.Radius == (RadiusTiers{}) {
		o.Radius = DefaultRadius
	}
	return o
}

// ClusterRadius returns the radius in km used at zoom.
func ClusterRadius(zoom float64, tiers RadiusTiers) float64 {
	if tiers == (RadiusTiers{}) {
		tiers = DefaultRadius
	}
	switch {
	case zoom <= 8:
		return tiers.Low
	case zoom <= 10:
		return tiers.Medium
	default:
		return tiers.High
	}
}

// Cluster groups items for display at opts.Zoom. At or above
// MinZoomForIndividual every item is returned individually.
func Cluster(items []domain.ClusterableItem, opts Options) domain.ClusterResult {
	opts = opts.withDefaults()

	if opts.Zoom >= opts.MinZoomForIndividual {
		individual := make([]domain.ClusterableItem, len(items))
		copy(individual, items)
		return domain.ClusterResult{IndividualItems: individual, Clusters: []domain.Cluster{}}
	}

	radius := ClusterRadius(opts.Zoom, opts.Radius)

	var groups [][]int
	if len(items) >= gridThreshold {
		groups = groupBanded(items, radius)
	} else {
		groups = groupPairwise(items, radius)
	}

	result := domain.ClusterResult{
		IndividualItems: []domain.ClusterableItem{},
		Clusters:        []domain.Cluster{},
	}
	for _, g := range groups {
		if len(g) == 1 {
			result.IndividualItems = append(result.IndividualItems, items[g[0]])
			continue
		}
		result.Clusters = append(result.Clusters, newCluster(items, g))
	}
	return result
}

// groupPairwise is the reference O(n²) scan. Each group lists input
// indexes, anchor first, then absorbed items in input order.
func groupPairwise(items []domain.ClusterableItem, radius float64) [][]int {
	clustered := make([]bool, len(items))
	var groups [][]int

	for i := range items {
		if clustered[i] {
			continue
		}
		clustered[i] = true
		group := []int{i}

		for j := i + 1; j < len(items); j++ {
			if clustered[j] {
				continue
			}
			if within(items[i], items[j], radius) {
				clustered[j] = true
				group = append(group, j)
			}
		}
		groups = append(groups, group)
	}
	return groups
}

// groupBanded produces exactly the groups of groupPairwise. Items are
// bucketed into latitude bands at least one radius tall, so any item
// within radius of an anchor sits in the anchor's band or a neighbouring
// one. Candidates are visited in ascending input index.
func groupBanded(items []domain.ClusterableItem, radius float64) [][]int {
	// Widen slightly so rounding in the distance formula cannot push a
	// qualifying neighbour two bands away.
	bandHeight := geospatial.KmToLatDegrees(radius) * 1.001
	if bandHeight <= 0 || math.IsNaN(bandHeight) || math.IsInf(bandHeight, 0) {
		return groupPairwise(items, radius)
	}

	bandOf := make([]int, len(items))
	bands := make(map[int][]int)
	for i, it := range items {
		b := int(math.Floor(it.Lat() / bandHeight))
		bandOf[i] = b
		bands[b] = append(bands[b], i) // ascending by construction
	}

	clustered := make([]bool, len(items))
	var groups [][]int
	candidates := make([]int, 0, 64)

	for i := range items {
		if clustered[i] {
			continue
		}
		clustered[i] = true
		group := []int{i}

		candidates = candidates[:0]
		for b := bandOf[i] - 1; b <= bandOf[i]+1; b++ {
			for _, j := range bands[b] {
				if j > i && !clustered[j] {
					candidates = append(candidates, j)
				}
			}
		}
		sort.Ints(candidates)

		for _, j := range candidates {
			if within(items[i], items[j], radius) {
				clustered[j] = true
				group = append(group, j)
			}
		}
		groups = append(groups, group)
	}
	return groups
}

func within(a, b domain.ClusterableItem, radius float64) bool {
	return geospatial.DistanceKm(a.Lat(), a.Lng(), b.Lat(), b.Lng()) <= radius
}

// newCluster builds a cluster from a group; its centroid is the plain
// arithmetic mean of member positions.
func newCluster(items []domain.ClusterableItem, group []int) domain.Cluster {
	members := make([]domain.ClusterableItem, len(group))
	var sumLat, sumLng float64
	for k, idx := range group {
		members[k] = items[idx]
		sumLat += items[idx].Lat()
		sumLng += items[idx].Lng()
	}
	n := float64(len(group))
	anchor := items[group[0]]
	return domain.Cluster{
		ID:       "cluster-" + anchor.ID,
		Centroid: [2]float64{sumLng / n, sumLat / n},
		Count:    len(group),
		Members:  members,
	}
}

// FilterItemsByBounds keeps the items inside bounds (edges inclusive), in
// input order. It performs no validity check on bounds.
func FilterItemsByBounds(items []domain.ClusterableItem, bounds domain.MapBounds) []domain.ClusterableItem {
	out := make([]domain.ClusterableItem, 0, len(items))
	for _, it := range items {
		if it.Lng() >= bounds.SW.Longitude && it.Lng() <= bounds.NE.Longitude &&
			it.Lat() >= bounds.SW.Latitude && it.Lat() <= bounds.NE.Latitude {
			out = append(out, it)
		}
	}
	return out
}
