package clustering

import (
	"math"

	"github.com/fishivo/geocore/internal/core/domain"
)

// ClusteringStats summarises a clustering pass for instrumentation.
type ClusteringStats struct {
	TotalItems      int `json:"total_items"`
	Clusters        int `json:"clusters"`
	IndividualItems int `json:"individual_items"`
	ClusteredItems  int `json:"clustered_items"`
	ReductionRatio  int `json:"reduction_ratio"` // percent of markers saved
	AvgClusterSize  int `json:"avg_cluster_size"`
}

// Stats computes marker reduction and average cluster size.
func Stats(items []domain.ClusterableItem, clusters []domain.Cluster, individual []domain.ClusterableItem) ClusteringStats {
	s := ClusteringStats{
		TotalItems:      len(items),
		Clusters:        len(clusters),
		IndividualItems: len(individual),
	}
	for _, c := range clusters {
		s.ClusteredItems += c.Count
	}
	if s.TotalItems > 0 {
		ratio := float64(s.TotalItems-s.Clusters-s.IndividualItems) / float64(s.TotalItems)
		s.ReductionRatio = int(math.Round(ratio * 100))
	}
	if s.Clusters > 0 {
		s.AvgClusterSize = int(math.Round(float64(s.ClusteredItems) / float64(s.Clusters)))
	}
	return s
}
