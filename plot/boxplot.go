// Package plot draws the image artifacts shown next to the summary and
// comparison tables.
package plot

import (
	"fmt"
	"math"

	"github.com/carbocation/pfx"
	"github.com/fogleman/gg"
	"github.com/montanaflynn/stats"
)

const (
	boxWidth  = 640
	boxHeight = 480

	marginLeft   = 70.0
	marginRight  = 20.0
	marginTop    = 50.0
	marginBottom = 60.0

	yTicks = 5
)

// Box is a Tukey box: quartiles plus whiskers at the most extreme points
// within 1.5 IQR of the box. Points beyond the whiskers are outliers.
type Box struct {
	N                       int
	Q1, Median, Q3          float64
	LowWhisker, HighWhisker float64
	Outliers                []float64
}

// NewBox summarizes values. An empty input returns a Box with N == 0.
func NewBox(values []float64) (Box, error) {
	out := Box{N: len(values)}

	switch len(values) {
	case 0:
		return out, nil
	case 1:
		v := values[0]
		out.Q1, out.Median, out.Q3, out.LowWhisker, out.HighWhisker = v, v, v, v, v
		return out, nil
	}

	q, err := stats.Quartile(values)
	if err != nil {
		return out, pfx.Err(err)
	}
	out.Q1, out.Median, out.Q3 = q.Q1, q.Q2, q.Q3

	iqr := q.Q3 - q.Q1
	lowFence, highFence := q.Q1-1.5*iqr, q.Q3+1.5*iqr

	out.LowWhisker, out.HighWhisker = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if v < lowFence || v > highFence {
			out.Outliers = append(out.Outliers, v)
			continue
		}
		out.LowWhisker = math.Min(out.LowWhisker, v)
		out.HighWhisker = math.Max(out.HighWhisker, v)
	}

	return out, nil
}

// Boxplot writes a PNG comparing the relative frequency (%) of one population
// between responders and non-responders.
func Boxplot(path, label string, responders, nonResponders []float64) error {
	groups := []struct {
		name    string
		values  []float64
		r, g, b float64
	}{
		{fmt.Sprintf("Responders (n=%d)", len(responders)), responders, 0.30, 0.60, 0.85},
		{fmt.Sprintf("Non-responders (n=%d)", len(nonResponders)), nonResponders, 0.90, 0.50, 0.30},
	}

	yMax := 0.0
	for _, g := range groups {
		if len(g.values) > 0 {
			m, err := stats.Max(g.values)
			if err != nil {
				return pfx.Err(err)
			}
			yMax = math.Max(yMax, m)
		}
	}
	yMax = niceCeiling(yMax * 1.05)

	dc := gg.NewContext(boxWidth, boxHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	plotW := boxWidth - marginLeft - marginRight
	plotH := boxHeight - marginTop - marginBottom
	y := func(v float64) float64 { return marginTop + plotH*(1-v/yMax) }

	// Axes and horizontal grid
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(fmt.Sprintf("%s relative frequency", label), boxWidth/2, marginTop/2, 0.5, 0.5)
	dc.SetLineWidth(1)
	for i := 0; i <= yTicks; i++ {
		v := yMax * float64(i) / yTicks
		dc.SetRGB(0.85, 0.85, 0.85)
		dc.DrawLine(marginLeft, y(v), marginLeft+plotW, y(v))
		dc.Stroke()
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(fmt.Sprintf("%.1f", v), marginLeft-8, y(v), 1, 0.5)
	}
	dc.DrawLine(marginLeft, marginTop, marginLeft, marginTop+plotH)
	dc.DrawLine(marginLeft, marginTop+plotH, marginLeft+plotW, marginTop+plotH)
	dc.Stroke()
	dc.Push()
	dc.RotateAbout(gg.Radians(-90), 18, marginTop+plotH/2)
	dc.DrawStringAnchored("Percentage", 18, marginTop+plotH/2, 0.5, 0.5)
	dc.Pop()

	slot := plotW / float64(len(groups))
	half := slot * 0.2
	for i, g := range groups {
		cx := marginLeft + slot*(float64(i)+0.5)

		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(g.name, cx, marginTop+plotH+20, 0.5, 0.5)

		box, err := NewBox(g.values)
		if err != nil {
			return err
		}
		if box.N == 0 {
			dc.DrawStringAnchored("no samples", cx, marginTop+plotH/2, 0.5, 0.5)
			continue
		}

		// Box
		dc.SetRGB(g.r, g.g, g.b)
		dc.DrawRectangle(cx-half, y(box.Q3), 2*half, y(box.Q1)-y(box.Q3))
		dc.Fill()
		dc.SetRGB(0, 0, 0)
		dc.SetLineWidth(1.5)
		dc.DrawRectangle(cx-half, y(box.Q3), 2*half, y(box.Q1)-y(box.Q3))
		dc.Stroke()

		// Median
		dc.SetLineWidth(2.5)
		dc.DrawLine(cx-half, y(box.Median), cx+half, y(box.Median))
		dc.Stroke()

		// Whiskers and caps
		dc.SetLineWidth(1.5)
		dc.DrawLine(cx, y(box.Q3), cx, y(box.HighWhisker))
		dc.DrawLine(cx, y(box.Q1), cx, y(box.LowWhisker))
		dc.DrawLine(cx-half/2, y(box.HighWhisker), cx+half/2, y(box.HighWhisker))
		dc.DrawLine(cx-half/2, y(box.LowWhisker), cx+half/2, y(box.LowWhisker))
		dc.Stroke()

		for _, o := range box.Outliers {
			dc.DrawCircle(cx, y(o), 3)
			dc.Stroke()
		}
	}

	return pfx.Err(dc.SavePNG(path))
}

// niceCeiling rounds v up to 1, 2 or 5 times a power of ten, so that the y
// axis ticks land on readable values. Zero maps to 1.
func niceCeiling(v float64) float64 {
	if v <= 0 {
		return 1
	}

	exp := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 5, 10} {
		if v <= m*exp {
			return m * exp
		}
	}

	return 10 * exp
}
