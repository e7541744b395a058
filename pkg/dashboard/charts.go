package dashboard

import (
	"fmt"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/surgiflow/surgiflow-go/pkg/dataset"
	"github.com/surgiflow/surgiflow-go/pkg/models"
)

const pageTitle = "Surgical Workflow Intelligence Platform"

// overviewPage assembles the main efficiency dashboard.
func overviewPage(results *models.AnalysisResults, ds *dataset.Dataset) *components.Page {
	page := components.NewPage()
	page.PageTitle = pageTitle
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		durationEfficiencyScatter(results, ds),
		toolUsageBar(ds),
		complicationRateBar(ds),
		experienceLine(ds),
	)
	return page
}

// phasesPage shows the detected surgical phases.
func phasesPage(phases *models.PhaseReport) *components.Page {
	page := components.NewPage()
	page.PageTitle = pageTitle
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		phaseDurationBar(phases),
		phaseSignatureBar(phases),
	)
	return page
}

// outliersPage shows flagged procedures against the normal population.
func outliersPage(outliers *models.OutlierReport, ds *dataset.Dataset) *components.Page {
	page := components.NewPage()
	page.PageTitle = pageTitle
	page.AddCharts(outlierScatter(outliers, ds))
	return page
}

// toolsPage shows the tool performance heatmap.
func toolsPage(ds *dataset.Dataset) *components.Page {
	page := components.NewPage()
	page.PageTitle = pageTitle
	page.AddCharts(toolPerformanceHeatmap(ds))
	return page
}

// monitorPage shows one procedure's telemetry channels.
func monitorPage(ds *dataset.Dataset) *components.Page {
	procID, readings := firstProcedureTrace(ds)

	timestamps := make([]int, 0, len(readings))
	force := make([]float64, 0, len(readings))
	current := make([]float64, 0, len(readings))
	temperature := make([]float64, 0, len(readings))
	vibration := make([]float64, 0, len(readings))
	for _, r := range readings {
		timestamps = append(timestamps, r.TimestampMinutes)
		force = append(force, r.ForceSensor)
		current = append(current, r.MotorCurrent)
		temperature = append(temperature, r.Temperature)
		vibration = append(vibration, r.Vibration)
	}

	page := components.NewPage()
	page.PageTitle = pageTitle
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		sensorLine(fmt.Sprintf("Force Sensor Readings - %s", procID), "Force (N)", timestamps, force),
		sensorLine("Motor Current", "Current (A)", timestamps, current),
		sensorLine("Temperature Profile", "Temperature (C)", timestamps, temperature),
		sensorLine("Vibration Levels", "Vibration", timestamps, vibration),
	)
	return page
}

func durationEfficiencyScatter(results *models.AnalysisResults, ds *dataset.Dataset) *charts.Scatter {
	totalOutliers := 0
	if results.OutlierAnalysis != nil {
		totalOutliers = results.OutlierAnalysis.TotalOutliers
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Procedure Duration vs Efficiency",
			Subtitle: fmt.Sprintf("%d procedures | %d tool usage records | %d efficiency outliers",
				len(ds.Procedures), len(ds.ToolUsage), totalOutliers),
		}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Duration (minutes)"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Efficiency score"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	points := make([]opts.ScatterData, 0, len(ds.Procedures))
	for _, p := range ds.Procedures {
		points = append(points, opts.ScatterData{
			Name:       p.ProcedureID,
			Value:      []interface{}{p.DurationMinutes, p.EfficiencyScore},
			SymbolSize: 8,
		})
	}
	scatter.AddSeries("Procedures", points)
	return scatter
}

func toolUsageBar(ds *dataset.Dataset) *charts.Bar {
	totals := make(map[models.ToolType]float64)
	counts := make(map[models.ToolType]int)
	for _, u := range ds.ToolUsage {
		totals[u.ToolType] += u.UsageTimeMinutes
		counts[u.ToolType]++
	}

	// Fixed instrument order keeps the chart stable across refreshes
	names := make([]string, 0, len(counts))
	values := make([]opts.BarData, 0, len(counts))
	for _, tool := range models.AllToolTypes {
		if counts[tool] == 0 {
			continue
		}
		names = append(names, string(tool))
		values = append(values, opts.BarData{Value: totals[tool] / float64(counts[tool])})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Tool Usage Patterns", Subtitle: "Average usage time per instrument (minutes)"}),
	)
	bar.SetXAxis(names).AddSeries("Avg usage time", values)
	return bar
}

func complicationRateBar(ds *dataset.Dataset) *charts.Bar {
	order := make([]models.ProcedureType, 0)
	totals := make(map[models.ProcedureType]int)
	complicated := make(map[models.ProcedureType]int)
	for _, p := range ds.Procedures {
		if totals[p.ProcedureType] == 0 {
			order = append(order, p.ProcedureType)
		}
		totals[p.ProcedureType]++
		if p.Complications {
			complicated[p.ProcedureType]++
		}
	}

	names := make([]string, 0, len(order))
	values := make([]opts.BarData, 0, len(order))
	for _, procType := range order {
		names = append(names, string(procType))
		rate := float64(complicated[procType]) / float64(totals[procType]) * 100
		values = append(values, opts.BarData{Value: rate})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Complications by Procedure Type", Subtitle: "Complication rate (%)"}),
	)
	bar.SetXAxis(names).AddSeries("Complication rate", values)
	return bar
}

func experienceLine(ds *dataset.Dataset) *charts.Line {
	type experienceBucket struct {
		label  string
		lo, hi int
	}
	buckets := []experienceBucket{
		{"0-5yrs", 0, 5},
		{"5-10yrs", 5, 10},
		{"10-25yrs", 10, 25},
	}

	sums := make([]float64, len(buckets))
	counts := make([]int, len(buckets))
	for _, p := range ds.Procedures {
		for i, b := range buckets {
			if p.SurgeonExperienceYrs > b.lo && p.SurgeonExperienceYrs <= b.hi {
				sums[i] += p.EfficiencyScore
				counts[i]++
				break
			}
		}
	}

	labels := make([]string, 0, len(buckets))
	values := make([]opts.LineData, 0, len(buckets))
	for i, b := range buckets {
		labels = append(labels, b.label)
		avg := 0.0
		if counts[i] > 0 {
			avg = sums[i] / float64(counts[i])
		}
		values = append(values, opts.LineData{Value: avg})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Surgeon Experience Impact", Subtitle: "Average efficiency score by experience"}),
	)
	line.SetXAxis(labels).AddSeries("Avg efficiency", values)
	return line
}

func phaseDurationBar(phases *models.PhaseReport) *charts.Bar {
	names := make([]string, 0, len(phases.Phases))
	values := make([]opts.BarData, 0, len(phases.Phases))
	for _, phase := range phases.Phases {
		names = append(names, phase.PhaseName)
		values = append(values, opts.BarData{Value: phase.AvgDurationMinutes})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Detected Surgical Phases - Average Duration",
			Subtitle: fmt.Sprintf("Silhouette score %.3f over %d clusters", phases.SilhouetteScore, phases.NumClusters),
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Average duration (minutes)"}),
	)
	bar.SetXAxis(names).AddSeries("Avg duration", values)
	return bar
}

func phaseSignatureBar(phases *models.PhaseReport) *charts.Bar {
	names := make([]string, 0, len(phases.Phases))
	force := make([]opts.BarData, 0, len(phases.Phases))
	current := make([]opts.BarData, 0, len(phases.Phases))
	for _, phase := range phases.Phases {
		names = append(names, phase.PhaseName)
		force = append(force, opts.BarData{Value: phase.AvgForce})
		current = append(current, opts.BarData{Value: phase.AvgMotorCurrent})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Phase Sensor Signatures", Subtitle: "Average force and motor current per phase"}),
	)
	bar.SetXAxis(names).
		AddSeries("Avg force", force).
		AddSeries("Avg motor current", current)
	return bar
}

func outlierScatter(outliers *models.OutlierReport, ds *dataset.Dataset) *charts.Scatter {
	flagged := make(map[string]bool, len(outliers.Outliers))
	for _, o := range outliers.Outliers {
		flagged[o.ProcedureID] = true
	}

	normal := make([]opts.ScatterData, 0, len(ds.Procedures))
	anomalies := make([]opts.ScatterData, 0, len(outliers.Outliers))
	for _, p := range ds.Procedures {
		point := []interface{}{p.DurationMinutes, p.EfficiencyScore}
		if flagged[p.ProcedureID] {
			anomalies = append(anomalies, opts.ScatterData{Name: p.ProcedureID, Value: point, Symbol: "diamond", SymbolSize: 12})
		} else {
			normal = append(normal, opts.ScatterData{Name: p.ProcedureID, Value: point, SymbolSize: 8})
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Procedure Efficiency Outlier Detection",
			Subtitle: fmt.Sprintf("%d of %d procedures flagged", outliers.TotalOutliers, outliers.TotalProcedures),
		}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Duration (minutes)"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Efficiency score"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	scatter.AddSeries("Normal Procedures", normal)
	scatter.AddSeries("Efficiency Outliers", anomalies)
	return scatter
}

func toolPerformanceHeatmap(ds *dataset.Dataset) *charts.HeatMap {
	metrics := []string{"usage_time_minutes", "efficiency_rating", "max_force_applied", "tissue_sticking_incidents"}

	type toolTotals struct {
		usage, rating, force, sticking float64
		count                          int
	}
	totals := make(map[models.ToolType]*toolTotals)
	for _, u := range ds.ToolUsage {
		t := totals[u.ToolType]
		if t == nil {
			t = &toolTotals{}
			totals[u.ToolType] = t
		}
		t.usage += u.UsageTimeMinutes
		t.rating += u.EfficiencyRating
		t.force += u.MaxForceApplied
		t.sticking += float64(u.TissueStickingIncidents)
		t.count++
	}

	names := make([]string, 0, len(totals))
	for _, tool := range models.AllToolTypes {
		if totals[tool] != nil {
			names = append(names, string(tool))
		}
	}

	data := make([]opts.HeatMapData, 0, len(names)*len(metrics))
	maxValue := 0.0
	for x, name := range names {
		t := totals[models.ToolType(name)]
		means := []float64{
			t.usage / float64(t.count),
			t.rating / float64(t.count),
			t.force / float64(t.count),
			t.sticking / float64(t.count),
		}
		for y, mean := range means {
			if mean > maxValue {
				maxValue = mean
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{x, y, mean}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Tool Performance Metrics Heatmap"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: names, Name: "Tool Type"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: metrics, Name: "Performance Metric"}),
		charts.WithVisualMapOpts(opts.VisualMap{Min: 0, Max: float32(maxValue)}),
	)
	hm.SetXAxis(names).AddSeries("Tool metrics", data)
	return hm
}

func sensorLine(title, axisName string, timestamps []int, values []float64) *charts.Line {
	points := make([]opts.LineData, 0, len(values))
	for _, v := range values {
		points = append(points, opts.LineData{Value: v})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Minutes from incision"}),
		charts.WithYAxisOpts(opts.YAxis{Name: axisName}),
	)
	line.SetXAxis(timestamps).AddSeries(title, points)
	return line
}

// firstProcedureTrace collects the telemetry for the first procedure with
// sensor samples, in timestamp order.
func firstProcedureTrace(ds *dataset.Dataset) (string, []models.SensorSample) {
	if len(ds.SensorSamples) == 0 {
		return "", nil
	}
	procID := ds.SensorSamples[0].ProcedureID

	readings := make([]models.SensorSample, 0)
	for _, sample := range ds.SensorSamples {
		if sample.ProcedureID == procID {
			readings = append(readings, sample)
		}
	}
	sort.Slice(readings, func(i, j int) bool {
		return readings[i].TimestampMinutes < readings[j].TimestampMinutes
	})
	return procID, readings
}
