package plot

import (
	"bytes"
	"os"

	"github.com/carbocation/cellfreq"
	"github.com/carbocation/cellfreq/summary"
	"github.com/carbocation/pfx"
	"github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/gonum/stat"
)

// FrequencyFilename is the fixed name of the overview chart.
const FrequencyFilename = "population_frequencies.png"

// MeanPercentages is the mean relative frequency of each population across
// all samples, in cellfreq.Populations order. Populations absent from rows
// get 0.
func MeanPercentages(rows []summary.Row) []float64 {
	byPop := summary.ByPopulation(rows)

	out := make([]float64, len(cellfreq.Populations))
	for i, pop := range cellfreq.Populations {
		values := make([]float64, 0, len(byPop[pop]))
		for _, r := range byPop[pop] {
			values = append(values, r.Percentage)
		}
		if len(values) > 0 {
			out[i] = stat.Mean(values, nil)
		}
	}

	return out
}

// FrequencyChart writes a bar chart of the mean relative frequency of each
// population.
func FrequencyChart(path string, rows []summary.Row) error {
	means := MeanPercentages(rows)

	top := 0.0
	bars := make([]chart.Value, 0, len(means))
	for i, pop := range cellfreq.Populations {
		bars = append(bars, chart.Value{Value: means[i], Label: pop.Label()})
		if means[i] > top {
			top = means[i]
		}
	}

	graph := chart.BarChart{
		Title:  "Mean relative frequency (%)",
		Width:  640,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		BarWidth:   60,
		BarSpacing: 40,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: niceCeiling(top * 1.05)},
		},
		Bars: bars,
	}

	// Render to a byte buffer
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return pfx.Err(err)
	}

	outFile, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}
	if _, err := buffer.WriteTo(outFile); err != nil {
		outFile.Close()
		return pfx.Err(err)
	}

	return pfx.Err(outFile.Close())
}
