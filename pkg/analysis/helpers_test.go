package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/surgiflow/surgiflow-go/pkg/dataset"
)

// generatedDataset builds a synthetic cohort for tests that need realistic data.
func generatedDataset(t *testing.T, numProcedures int, seed int64) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.NewGenerator(seed).Generate(numProcedures)
	require.NoError(t, err)
	return ds
}
