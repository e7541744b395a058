package analysis

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
)

const (
	defaultMaxIterations = 300
	defaultTolerance     = 1e-4
)

// KMeans clusters samples into K groups using Lloyd iterations with
// k-means++ seeding.
type KMeans struct {
	K             int     `json:"k"`
	MaxIterations int     `json:"max_iterations"`
	Tolerance     float64 `json:"tolerance"`
	RandomSeed    int64   `json:"random_seed"`

	rand *rand.Rand
}

// KMeansResult holds the outcome of one clustering run.
type KMeansResult struct {
	Centroids  [][]float64 `json:"centroids"`
	Labels     []int       `json:"labels"`
	Inertia    float64     `json:"inertia"`
	Iterations int         `json:"iterations"`
}

// NewKMeans creates a clusterer for k clusters with standard parameters.
// The same seed always produces the same clustering for the same data.
func NewKMeans(k int, seed int64) *KMeans {
	return &KMeans{
		K:             k,
		MaxIterations: defaultMaxIterations,
		Tolerance:     defaultTolerance,
		RandomSeed:    seed,
		rand:          rand.New(rand.NewPCG(uint64(seed), uint64(seed))),
	}
}

// Fit clusters the sample matrix and returns centroids and labels.
// It fails when fewer distinct samples exist than requested clusters.
func (km *KMeans) Fit(X [][]float64) (*KMeansResult, error) {
	if len(X) == 0 {
		return nil, fmt.Errorf("kmeans: %w", ErrEmptyPopulation)
	}
	if km.K < 1 {
		return nil, fmt.Errorf("kmeans: cluster count must be positive, got %d", km.K)
	}

	numFeatures := len(X[0])
	for i, row := range X {
		if len(row) != numFeatures {
			return nil, fmt.Errorf("kmeans: row %d has %d features, expected %d", i, len(row), numFeatures)
		}
	}

	if distinct := countDistinctRows(X); distinct < km.K {
		return nil, fmt.Errorf("kmeans needs at least %d distinct samples for %d clusters, got %d: %w",
			km.K, km.K, distinct, ErrInsufficientData)
	}

	centroids := km.seedCentroids(X)
	labels := make([]int, len(X))

	iterations := 0
	for iter := 1; iter <= km.MaxIterations; iter++ {
		iterations = iter

		for i, x := range X {
			labels[i] = nearestCentroid(x, centroids)
		}

		next := recomputeCentroids(X, labels, km.K, numFeatures)
		fixEmptyClusters(next, X, labels, centroids)

		shift := 0.0
		for c := range centroids {
			if d := euclidean(centroids[c], next[c]); d > shift {
				shift = d
			}
		}
		centroids = next

		if shift < km.Tolerance {
			break
		}
	}

	// Final assignment against the converged centroids
	inertia := 0.0
	for i, x := range X {
		labels[i] = nearestCentroid(x, centroids)
		inertia += squaredDistance(x, centroids[labels[i]])
	}

	return &KMeansResult{
		Centroids:  centroids,
		Labels:     labels,
		Inertia:    inertia,
		Iterations: iterations,
	}, nil
}

// seedCentroids picks initial centroids with k-means++: each subsequent
// centroid is sampled proportionally to its squared distance from the
// nearest centroid chosen so far.
func (km *KMeans) seedCentroids(X [][]float64) [][]float64 {
	centroids := make([][]float64, 0, km.K)
	first := X[km.rand.IntN(len(X))]
	centroids = append(centroids, cloneRow(first))

	dists := make([]float64, len(X))
	for len(centroids) < km.K {
		total := 0.0
		for i, x := range X {
			d := squaredDistance(x, centroids[0])
			for _, c := range centroids[1:] {
				if dc := squaredDistance(x, c); dc < d {
					d = dc
				}
			}
			dists[i] = d
			total += d
		}

		if total == 0 {
			centroids = append(centroids, cloneRow(X[km.rand.IntN(len(X))]))
			continue
		}

		target := km.rand.Float64() * total
		cumulative := 0.0
		chosen := len(X) - 1
		for i, d := range dists {
			cumulative += d
			if cumulative >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, cloneRow(X[chosen]))
	}
	return centroids
}

// recomputeCentroids averages the members of each cluster.
// Empty clusters come back as nil rows for fixEmptyClusters to handle.
func recomputeCentroids(X [][]float64, labels []int, k, numFeatures int) [][]float64 {
	sums := make([][]float64, k)
	counts := make([]int, k)
	for c := range sums {
		sums[c] = make([]float64, numFeatures)
	}
	for i, x := range X {
		c := labels[i]
		counts[c]++
		for j, v := range x {
			sums[c][j] += v
		}
	}

	centroids := make([][]float64, k)
	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		centroids[c] = sums[c]
		for j := range centroids[c] {
			centroids[c][j] /= float64(counts[c])
		}
	}
	return centroids
}

// fixEmptyClusters relocates any empty cluster to the sample farthest
// from its assigned centroid.
func fixEmptyClusters(centroids [][]float64, X [][]float64, labels []int, previous [][]float64) {
	for c := range centroids {
		if centroids[c] != nil {
			continue
		}

		farthest, maxDist := 0, -1.0
		for i, x := range X {
			owner := centroids[labels[i]]
			if owner == nil {
				owner = previous[labels[i]]
			}
			if d := squaredDistance(x, owner); d > maxDist {
				maxDist = d
				farthest = i
			}
		}
		centroids[c] = cloneRow(X[farthest])
		labels[farthest] = c
	}
}

// SilhouetteScore measures how well samples fit their assigned clusters,
// in [-1, 1]. Higher is better separated.
func SilhouetteScore(X [][]float64, labels []int) (float64, error) {
	if len(X) == 0 {
		return 0, fmt.Errorf("silhouette: %w", ErrEmptyPopulation)
	}
	if len(X) != len(labels) {
		return 0, fmt.Errorf("silhouette: %d samples but %d labels", len(X), len(labels))
	}

	clusterSizes := make(map[int]int)
	for _, label := range labels {
		clusterSizes[label]++
	}
	if len(clusterSizes) < 2 {
		return 0, fmt.Errorf("silhouette needs at least 2 clusters, got %d: %w", len(clusterSizes), ErrInsufficientData)
	}

	total := 0.0
	for i, x := range X {
		own := labels[i]
		if clusterSizes[own] == 1 {
			// Singleton clusters contribute zero by convention
			continue
		}

		// Mean distance to every cluster
		meanDist := make(map[int]float64, len(clusterSizes))
		for j, other := range X {
			if i == j {
				continue
			}
			meanDist[labels[j]] += euclidean(x, other)
		}
		for label := range meanDist {
			n := clusterSizes[label]
			if label == own {
				n--
			}
			meanDist[label] /= float64(n)
		}

		a := meanDist[own]
		b := math.Inf(1)
		for label, d := range meanDist {
			if label != own && d < b {
				b = d
			}
		}

		if m := math.Max(a, b); m > 0 {
			total += (b - a) / m
		}
	}
	return total / float64(len(X)), nil
}

func nearestCentroid(x []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := squaredDistance(x, centroid); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func squaredDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func euclidean(a, b []float64) float64 {
	return math.Sqrt(squaredDistance(a, b))
}

func cloneRow(row []float64) []float64 {
	clone := make([]float64, len(row))
	copy(clone, row)
	return clone
}

// countDistinctRows counts unique samples by exact value.
func countDistinctRows(X [][]float64) int {
	seen := make(map[string]struct{}, len(X))
	var sb strings.Builder
	for _, row := range X {
		sb.Reset()
		for _, v := range row {
			sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
			sb.WriteByte(',')
		}
		seen[sb.String()] = struct{}{}
	}
	return len(seen)
}
