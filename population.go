package cellfreq

import (
	"fmt"
	"strings"
)

// Population is one of the immune-cell types counted for every sample.
type Population string

const (
	BCell    Population = "b_cell"
	CD8TCell Population = "cd8_t_cell"
	CD4TCell Population = "cd4_t_cell"
	NKCell   Population = "nk_cell"
	Monocyte Population = "monocyte"
)

// Populations is the fixed column order of the source file and of the
// long-format summary.
var Populations = []Population{BCell, CD8TCell, CD4TCell, NKCell, Monocyte}

var populationLabels = map[Population]string{
	BCell:    "B Cell",
	CD8TCell: "CD8 T Cell",
	CD4TCell: "CD4 T Cell",
	NKCell:   "NK Cell",
	Monocyte: "Monocyte",
}

// Label is the human readable name shown in selectors and plot titles.
func (p Population) Label() string {
	if l, ok := populationLabels[p]; ok {
		return l
	}

	return string(p)
}

// BoxplotFilename is the artifact name for this population's box plot, e.g.
// b_cell_boxplot.png.
func (p Population) BoxplotFilename(ext string) string {
	return fmt.Sprintf("%s_boxplot.%s", p, strings.TrimPrefix(ext, "."))
}

// ParsePopulation accepts either the column form ("cd4_t_cell") or the label
// form ("CD4 T Cell").
func ParsePopulation(s string) (Population, error) {
	s = strings.TrimSpace(s)
	for _, p := range Populations {
		if strings.EqualFold(s, string(p)) || strings.EqualFold(s, p.Label()) {
			return p, nil
		}
	}

	return "", fmt.Errorf("%q is not a known cell population", s)
}
