package analysis

import (
	"fmt"
	"sort"

	"github.com/surgiflow/surgiflow-go/pkg/dataset"
	"github.com/surgiflow/surgiflow-go/pkg/models"
)

// topToolCount limits how many common instruments are reported per type.
const topToolCount = 3

// AnalyzeProcedureTypePatterns summarizes workflow characteristics for each
// procedure type. Types are reported in first-encounter order.
func AnalyzeProcedureTypePatterns(ds *dataset.Dataset) ([]models.TypePattern, error) {
	if len(ds.Procedures) == 0 {
		return nil, fmt.Errorf("type pattern analysis: %w", ErrEmptyPopulation)
	}

	var order []models.ProcedureType
	byType := make(map[models.ProcedureType][]models.Procedure)
	for _, proc := range ds.Procedures {
		if _, ok := byType[proc.ProcedureType]; !ok {
			order = append(order, proc.ProcedureType)
		}
		byType[proc.ProcedureType] = append(byType[proc.ProcedureType], proc)
	}

	grouped := ds.ToolUsageByProcedure()

	patterns := make([]models.TypePattern, 0, len(order))
	for _, procType := range order {
		procedures := byType[procType]

		pattern := models.TypePattern{
			ProcedureType: procType,
			NumProcedures: len(procedures),
		}

		toolCounts := make(map[models.ToolType]int)
		toolRows := 0
		for _, proc := range procedures {
			pattern.AvgDuration += proc.DurationMinutes
			pattern.AvgEfficiency += proc.EfficiencyScore
			if proc.Complications {
				pattern.ComplicationRate++
			}
			for _, usage := range grouped[proc.ProcedureID] {
				toolCounts[usage.ToolType]++
				pattern.AvgToolUsageTime += usage.UsageTimeMinutes
				toolRows++
			}
		}

		n := float64(len(procedures))
		pattern.AvgDuration /= n
		pattern.AvgEfficiency /= n
		pattern.ComplicationRate /= n
		if toolRows > 0 {
			pattern.AvgToolUsageTime /= float64(toolRows)
		}
		pattern.CommonTools = topTools(toolCounts, topToolCount)

		patterns = append(patterns, pattern)
	}
	return patterns, nil
}

// topTools returns the most used instruments, ties broken by name for
// stable output.
func topTools(counts map[models.ToolType]int, limit int) []models.ToolCount {
	tools := make([]models.ToolCount, 0, len(counts))
	for tool, count := range counts {
		tools = append(tools, models.ToolCount{ToolType: tool, Count: count})
	}

	sort.Slice(tools, func(i, j int) bool {
		if tools[i].Count != tools[j].Count {
			return tools[i].Count > tools[j].Count
		}
		return tools[i].ToolType < tools[j].ToolType
	})

	if len(tools) > limit {
		tools = tools[:limit]
	}
	return tools
}
