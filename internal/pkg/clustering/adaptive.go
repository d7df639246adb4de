package clustering

import (
	"strings"

	"github.com/fishivo/geocore/internal/core/domain"
)

// PerformanceTarget trades marker density against computation.
type PerformanceTarget string

const (
	TargetFast     PerformanceTarget = "fast"     // fewer, larger clusters
	TargetBalanced PerformanceTarget = "balanced" // defaults
	TargetDetailed PerformanceTarget = "detailed" // more individual markers
)

// ParsePerformanceTarget maps a name to a target; anything unknown is balanced.
func ParsePerformanceTarget(s string) PerformanceTarget {
	switch PerformanceTarget(strings.ToLower(strings.TrimSpace(s))) {
	case TargetFast:
		return TargetFast
	case TargetDetailed:
		return TargetDetailed
	default:
		return TargetBalanced
	}
}

// Preset returns the clustering options for target at zoom.
func Preset(target PerformanceTarget, zoom float64) Options {
	switch target {
	case TargetFast:
		return Options{
			Zoom:                 zoom,
			MinZoomForIndividual: 14,
			Radius:               RadiusTiers{Low: 100, Medium: 50, High: 25},
		}
	case TargetDetailed:
		return Options{
			Zoom:                 zoom,
			MinZoomForIndividual: 10,
			Radius:               RadiusTiers{Low: 25, Medium: 10, High: 5},
		}
	default:
		return Options{
			Zoom:                 zoom,
			MinZoomForIndividual: DefaultMinZoomForIndividual,
			Radius:               DefaultRadius,
		}
	}
}

// AdaptiveCluster clusters items with the preset for target.
func AdaptiveCluster(items []domain.ClusterableItem, zoom float64, target PerformanceTarget) domain.ClusterResult {
	return Cluster(items, Preset(target, zoom))
}
