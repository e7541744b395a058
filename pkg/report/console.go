package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"

	"github.com/surgiflow/surgiflow-go/pkg/dataset"
	"github.com/surgiflow/surgiflow-go/pkg/models"
)

// RenderTypePatterns writes a procedure-type summary table.
func RenderTypePatterns(w io.Writer, patterns []models.TypePattern) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Procedure Type", "Count", "Avg Duration", "Avg Efficiency", "Complication Rate", "Top Tools"})

	for _, p := range patterns {
		tools := make([]string, 0, len(p.CommonTools))
		for _, tool := range p.CommonTools {
			tools = append(tools, string(tool.ToolType))
		}
		table.Append([]string{
			string(p.ProcedureType),
			strconv.Itoa(p.NumProcedures),
			fmt.Sprintf("%.1f min", p.AvgDuration),
			fmt.Sprintf("%.1f", p.AvgEfficiency),
			fmt.Sprintf("%.1f%%", p.ComplicationRate*100),
			strings.Join(tools, ", "),
		})
	}
	table.Render()
}

// RenderCorrelationTable writes reported correlations, strongest first.
func RenderCorrelationTable(w io.Writer, corr *models.CorrelationReport) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Feature", "Outcome", "r", "p-value", "Strength"})

	for _, c := range topCorrelations(corr.Correlations, len(corr.Correlations)) {
		table.Append([]string{
			c.Feature,
			c.Outcome,
			fmt.Sprintf("%.3f", c.Coefficient),
			fmt.Sprintf("%.4f", c.PValue),
			string(c.Strength),
		})
	}
	table.Render()
}

// RenderPowerTable writes the power analysis table.
func RenderPowerTable(w io.Writer, estimates []models.PowerEstimate) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Effect Size", "Required Procedures"})

	for _, e := range estimates {
		table.Append([]string{
			strconv.FormatFloat(e.EffectSize, 'g', -1, 64),
			strconv.Itoa(e.RequiredSampleSize),
		})
	}
	table.Render()
}

// RenderSensorTrace draws an ASCII chart of force readings for the first
// procedure with telemetry.
func RenderSensorTrace(w io.Writer, ds *dataset.Dataset) {
	procID, series := firstSensorTrace(ds)
	if len(series) < 2 {
		fmt.Fprintln(w, "No sensor telemetry available")
		return
	}

	chart := asciigraph.Plot(series,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption(fmt.Sprintf("Force sensor trace for %s", procID)))
	fmt.Fprintln(w, chart)
}

// firstSensorTrace collects the force readings for the first procedure that
// has telemetry, in timestamp order.
func firstSensorTrace(ds *dataset.Dataset) (string, []float64) {
	if len(ds.SensorSamples) == 0 {
		return "", nil
	}
	procID := ds.SensorSamples[0].ProcedureID

	type reading struct {
		timestamp int
		force     float64
	}
	readings := make([]reading, 0)
	for _, sample := range ds.SensorSamples {
		if sample.ProcedureID == procID {
			readings = append(readings, reading{sample.TimestampMinutes, sample.ForceSensor})
		}
	}
	sort.Slice(readings, func(i, j int) bool { return readings[i].timestamp < readings[j].timestamp })

	series := make([]float64, 0, len(readings))
	for _, r := range readings {
		series = append(series, r.force)
	}
	return procID, series
}
