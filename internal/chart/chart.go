// Package chart is the presentation boundary: it renders a stored price
// series as a self-contained HTML chart.
package chart

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/stocklens/stocklens/internal/models"
)

// Presenter renders a price series. Rendering an empty series is valid and
// produces an empty chart.
type Presenter interface {
	Render(rows []models.PriceRow) error
}

// Kind selects the chart style.
type Kind string

const (
	// KindLine plots close prices as a line.
	KindLine Kind = "line"
	// KindKline plots full OHLC candlesticks.
	KindKline Kind = "kline"
)

// HTMLPresenter writes a chart to an HTML file that can be opened in any
// browser.
type HTMLPresenter struct {
	OutputPath string
	Kind       Kind
	Title      string
	logger     *slog.Logger
}

// NewHTMLPresenter creates a presenter writing to outputPath.
func NewHTMLPresenter(outputPath string, kind Kind, title string, logger *slog.Logger) *HTMLPresenter {
	if logger == nil {
		logger = slog.Default()
	}
	if kind == "" {
		kind = KindLine
	}
	return &HTMLPresenter{
		OutputPath: outputPath,
		Kind:       kind,
		Title:      title,
		logger:     logger.With("component", "chart_presenter"),
	}
}

// Render implements Presenter.Render.
func (p *HTMLPresenter) Render(rows []models.PriceRow) error {
	f, err := os.Create(p.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file %s: %w", p.OutputPath, err)
	}
	defer f.Close()

	if err := p.write(rows, f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	p.logger.Info("chart written", "path", p.OutputPath, "rows", len(rows), "kind", string(p.Kind))
	return nil
}

func (p *HTMLPresenter) write(rows []models.PriceRow, w io.Writer) error {
	switch p.Kind {
	case KindKline:
		return p.writeKline(rows, w)
	default:
		return p.writeLine(rows, w)
	}
}

func (p *HTMLPresenter) writeLine(rows []models.PriceRow, w io.Writer) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: p.Title,
			Width:     "1100px",
			Height:    "550px",
		}),
		charts.WithTitleOpts(opts.Title{Title: p.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	x := make([]string, 0, len(rows))
	y := make([]opts.LineData, 0, len(rows))
	for i := range rows {
		close, err := rows[i].CloseDecimal()
		if err != nil {
			return fmt.Errorf("row %s: %w", rows[i].Date.Format(models.DateFormat), err)
		}
		v, _ := close.Float64()
		x = append(x, rows[i].Date.Format(models.DateFormat))
		y = append(y, opts.LineData{Value: v})
	}

	line.SetXAxis(x).AddSeries("close", y)
	return line.Render(w)
}

func (p *HTMLPresenter) writeKline(rows []models.PriceRow, w io.Writer) error {
	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: p.Title,
			Width:     "1100px",
			Height:    "550px",
		}),
		charts.WithTitleOpts(opts.Title{Title: p.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	x := make([]string, 0, len(rows))
	y := make([]opts.KlineData, 0, len(rows))
	for i := range rows {
		open, err := rows[i].OpenDecimal()
		if err != nil {
			return fmt.Errorf("row %s: %w", rows[i].Date.Format(models.DateFormat), err)
		}
		high, err := rows[i].HighDecimal()
		if err != nil {
			return fmt.Errorf("row %s: %w", rows[i].Date.Format(models.DateFormat), err)
		}
		low, err := rows[i].LowDecimal()
		if err != nil {
			return fmt.Errorf("row %s: %w", rows[i].Date.Format(models.DateFormat), err)
		}
		close, err := rows[i].CloseDecimal()
		if err != nil {
			return fmt.Errorf("row %s: %w", rows[i].Date.Format(models.DateFormat), err)
		}

		o, _ := open.Float64()
		h, _ := high.Float64()
		l, _ := low.Float64()
		c, _ := close.Float64()
		x = append(x, rows[i].Date.Format(models.DateFormat))
		// echarts kline value order is [open, close, low, high]
		y = append(y, opts.KlineData{Value: [4]float64{o, c, l, h}})
	}

	kline.SetXAxis(x).AddSeries("ohlc", y)
	return kline.Render(w)
}
