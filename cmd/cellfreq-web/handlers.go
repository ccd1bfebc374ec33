package main

import (
	"fmt"
	"math"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/carbocation/cellfreq"
	"github.com/carbocation/cellfreq/compare"
	"github.com/carbocation/cellfreq/plot"
	"github.com/carbocation/cellfreq/store"
	"github.com/carbocation/cellfreq/subset"
	"github.com/carbocation/cellfreq/summary"
	"github.com/gorilla/mux"
	"gopkg.in/guregu/null.v3"
)

// ResultView is a comparison row as the pages and the JSON API show it. An
// untested population has a null p-value.
type ResultView struct {
	Population    cellfreq.Population
	Label         string
	Statistic     null.Float
	PValue        null.Float
	Responders    int
	NonResponders int
	Significant   bool
	Verdict       string
	Boxplot       string
}

func newResultView(r compare.Result) ResultView {
	return ResultView{
		Population:    r.CellType,
		Label:         r.CellType.Label(),
		Statistic:     null.NewFloat(r.Statistic, !math.IsNaN(r.Statistic)),
		PValue:        null.NewFloat(r.PValue, !math.IsNaN(r.PValue)),
		Responders:    r.Responders,
		NonResponders: r.NonResponders,
		Significant:   r.Significant(),
		Verdict:       r.Verdict(),
		Boxplot:       r.CellType.BoxplotFilename("png"),
	}
}

func (h *handler) Overview(w http.ResponseWriter, r *http.Request) {
	pageViews.WithLabelValues("overview").Inc()

	rows, err := h.Summary()
	if err != nil {
		HTTPError(h, w, r, err)
		return
	}

	output := struct {
		Samples     int
		Summary     []summary.Row
		Chart       string
		Populations []cellfreq.Population
	}{
		Samples:     len(rows) / len(cellfreq.Populations),
		Summary:     rows,
		Chart:       plot.FrequencyFilename,
		Populations: cellfreq.Populations,
	}

	Render(h, w, r, "Overview", "overview.html", output)
}

func (h *handler) Statistics(w http.ResponseWriter, r *http.Request) {
	pageViews.WithLabelValues("statistics").Inc()

	selected := cellfreq.Populations[0]
	if q := r.URL.Query().Get("population"); q != "" {
		pop, err := cellfreq.ParsePopulation(q)
		if err != nil {
			HTTPBadRequest(h, w, r, err)
			return
		}
		selected = pop
	}

	a, err := h.Analysis()
	if err != nil {
		HTTPError(h, w, r, err)
		return
	}

	views := make([]ResultView, 0, len(a.Results))
	for _, res := range a.Results {
		views = append(views, newResultView(res))
	}

	res, ok := compare.Find(a.Results, selected)
	if !ok {
		HTTPNotFound(h, w, r, fmt.Errorf("no comparison result for %s", selected))
		return
	}

	output := struct {
		Selected    ResultView
		Results     []ResultView
		Populations []cellfreq.Population
		Threshold   float64
	}{
		Selected:    newResultView(res),
		Results:     views,
		Populations: cellfreq.Populations,
		Threshold:   compare.SignificanceThreshold,
	}

	Render(h, w, r, "Statistics: "+selected.Label(), "statistics.html", output)
}

func (h *handler) Subset(w http.ResponseWriter, r *http.Request) {
	pageViews.WithLabelValues("subset").Inc()

	a, err := h.Analysis()
	if err != nil {
		HTTPError(h, w, r, err)
		return
	}

	output := struct {
		Name      string
		Filter    map[string]string
		Rows      []store.Metadata
		Breakdown []subset.BreakdownRow
	}{
		Name:      h.SubsetName,
		Filter:    h.Config.Subset,
		Rows:      a.Subset,
		Breakdown: a.Breakdown.Rows(),
	}

	Render(h, w, r, "Subset: "+h.SubsetName, "subset.html", output)
}

// Artifact serves a file that the pipeline wrote into the output folder. The
// route pattern only admits flat names, so nothing outside the folder is
// reachable.
func (h *handler) Artifact(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["file"]
	if name == "" || strings.ContainsAny(name, `/\`) {
		HTTPNotFound(h, w, r, fmt.Errorf("no such artifact"))
		return
	}

	// Make sure the artifacts exist before serving them.
	if _, err := h.Analysis(); err != nil {
		HTTPError(h, w, r, err)
		return
	}

	http.ServeFile(w, r, filepath.Join(h.OutputDir, name))
}

func (h *handler) Reload(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Global.Reload(r.Context())
	if err != nil {
		reloads.WithLabelValues("error").Inc()
		HTTPError(h, w, r, err)
		return
	}
	reloads.WithLabelValues("ok").Inc()
	rowsInserted.WithLabelValues("projects").Add(float64(stats.ProjectsInserted))
	rowsInserted.WithLabelValues("subjects").Add(float64(stats.SubjectsInserted))
	rowsInserted.WithLabelValues("samples").Add(float64(stats.SamplesInserted))

	h.log.Println("Reloaded:", stats)

	if r.URL.Query().Get("format") == "json" {
		renderJSON(h, w, r, stats)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
