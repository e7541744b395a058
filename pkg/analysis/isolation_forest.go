package analysis

import (
	"fmt"
	"math"
	"math/rand/v2"
)

const (
	defaultNumTrees      = 100
	defaultSubsampleSize = 256
)

// eulerMascheroni is used in the harmonic number approximation for
// expected path lengths.
const eulerMascheroni = 0.5772156649015329

// IsolationForest detects anomalies by isolating samples with random
// axis-aligned splits. Anomalous samples take fewer splits to isolate,
// so their average path length across trees is shorter and their score
// is closer to 1.
type IsolationForest struct {
	NumTrees      int   `json:"num_trees"`
	SubsampleSize int   `json:"subsample_size"`
	RandomSeed    int64 `json:"random_seed"`

	rand        *rand.Rand
	trees       []*isolationTree
	sampleSize  int // actual subsample size used during Fit
	numFeatures int
}

// isolationTree is one random isolation tree. Leaves record how many
// training samples reached them.
type isolationTree struct {
	feature int
	split   float64
	left    *isolationTree
	right   *isolationTree
	size    int
}

// NewIsolationForest creates a forest with standard parameters.
// The same seed always produces the same forest for the same data.
func NewIsolationForest(seed int64) *IsolationForest {
	return &IsolationForest{
		NumTrees:      defaultNumTrees,
		SubsampleSize: defaultSubsampleSize,
		RandomSeed:    seed,
		rand:          rand.New(rand.NewPCG(uint64(seed), uint64(seed))),
	}
}

// Fit builds the forest from the sample matrix.
func (f *IsolationForest) Fit(X [][]float64) error {
	if len(X) == 0 {
		return fmt.Errorf("isolation forest: %w", ErrEmptyPopulation)
	}
	if len(X) < 2 {
		return fmt.Errorf("isolation forest needs at least 2 samples, got %d: %w", len(X), ErrInsufficientData)
	}

	f.numFeatures = len(X[0])
	for i, row := range X {
		if len(row) != f.numFeatures {
			return fmt.Errorf("isolation forest: row %d has %d features, expected %d", i, len(row), f.numFeatures)
		}
	}

	f.sampleSize = f.SubsampleSize
	if f.sampleSize > len(X) {
		f.sampleSize = len(X)
	}
	heightLimit := int(math.Ceil(math.Log2(float64(f.sampleSize))))

	// Trees are built sequentially so the seed fully determines the forest.
	f.trees = make([]*isolationTree, 0, f.NumTrees)
	for i := 0; i < f.NumTrees; i++ {
		sample := f.subsample(X)
		f.trees = append(f.trees, f.buildTree(sample, 0, heightLimit))
	}
	return nil
}

// subsample draws sampleSize rows without replacement.
func (f *IsolationForest) subsample(X [][]float64) [][]float64 {
	perm := f.rand.Perm(len(X))
	sample := make([][]float64, f.sampleSize)
	for i := 0; i < f.sampleSize; i++ {
		sample[i] = X[perm[i]]
	}
	return sample
}

// buildTree recursively partitions the sample with random splits until
// samples are isolated or the height limit is reached.
func (f *IsolationForest) buildTree(X [][]float64, depth, heightLimit int) *isolationTree {
	if depth >= heightLimit || len(X) <= 1 {
		return &isolationTree{size: len(X)}
	}

	feature := f.rand.IntN(f.numFeatures)
	lo, hi := X[0][feature], X[0][feature]
	for _, row := range X[1:] {
		if row[feature] < lo {
			lo = row[feature]
		}
		if row[feature] > hi {
			hi = row[feature]
		}
	}
	if lo == hi {
		return &isolationTree{size: len(X)}
	}

	split := lo + f.rand.Float64()*(hi-lo)
	var left, right [][]float64
	for _, row := range X {
		if row[feature] < split {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}

	return &isolationTree{
		feature: feature,
		split:   split,
		left:    f.buildTree(left, depth+1, heightLimit),
		right:   f.buildTree(right, depth+1, heightLimit),
	}
}

// Score returns the anomaly score for a single sample, in (0, 1).
func (f *IsolationForest) Score(x []float64) (float64, error) {
	if len(f.trees) == 0 {
		return 0, fmt.Errorf("isolation forest not fitted")
	}
	if len(x) != f.numFeatures {
		return 0, fmt.Errorf("isolation forest: expected %d features, got %d", f.numFeatures, len(x))
	}

	sum := 0.0
	for _, tree := range f.trees {
		sum += tree.pathLength(x, 0)
	}
	avgPath := sum / float64(len(f.trees))
	return math.Pow(2, -avgPath/averagePathLength(f.sampleSize)), nil
}

// Scores returns anomaly scores for every row of X.
func (f *IsolationForest) Scores(X [][]float64) ([]float64, error) {
	scores := make([]float64, len(X))
	for i, x := range X {
		score, err := f.Score(x)
		if err != nil {
			return nil, err
		}
		scores[i] = score
	}
	return scores, nil
}

// pathLength walks a sample down the tree and returns the depth reached,
// adjusted for unresolved leaves.
func (t *isolationTree) pathLength(x []float64, depth float64) float64 {
	if t.left == nil && t.right == nil {
		return depth + averagePathLength(t.size)
	}
	if x[t.feature] < t.split {
		return t.left.pathLength(x, depth+1)
	}
	return t.right.pathLength(x, depth+1)
}

// averagePathLength returns the expected path length of an unsuccessful
// search in a binary search tree holding m samples.
func averagePathLength(m int) float64 {
	if m <= 1 {
		return 0
	}
	if m == 2 {
		return 1
	}
	harmonic := math.Log(float64(m-1)) + eulerMascheroni
	return 2*harmonic - 2*float64(m-1)/float64(m)
}
