// Command auditstats aggregates stored audit reports and renders a
// histogram of the most frequently violated regulations.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// RegulationStats counts how often one regulation was violated.
type RegulationStats struct {
	Regulation string
	Count      int
}

// storedReport is the subset of the persisted report JSON this tool needs.
type storedReport struct {
	Status     string `json:"status"`
	Score      int    `json:"score"`
	Violations []struct {
		Regulation string `json:"regulation"`
		Severity   string `json:"severity"`
	} `json:"violations"`
}

// AuditAnalyzer reads audit records and aggregates violation statistics.
type AuditAnalyzer struct {
	db *sql.DB
}

// NewAuditAnalyzer connects to the audit database.
func NewAuditAnalyzer(dsn string) (*AuditAnalyzer, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %v", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %v", err)
	}

	return &AuditAnalyzer{db: db}, nil
}

// FetchReports loads every stored audit result payload.
func (aa *AuditAnalyzer) FetchReports() ([]storedReport, error) {
	query := "SELECT audit_result FROM audit_records WHERE audit_result IS NOT NULL AND audit_result != ''"
	rows, err := aa.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %v", err)
	}
	defer rows.Close()

	var reports []storedReport
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			log.Printf("scan row failed: %v", err)
			continue
		}
		var rep storedReport
		if err := json.Unmarshal([]byte(raw), &rep); err != nil {
			log.Printf("decode report failed: %v", err)
			continue
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result set failed: %v", err)
	}

	fmt.Printf("loaded %d audit reports\n", len(reports))
	return reports, nil
}

// AnalyzeViolations counts violated regulations, returns the top N.
func (aa *AuditAnalyzer) AnalyzeViolations(reports []storedReport, topN int) []RegulationStats {
	countMap := make(map[string]int)
	severityMap := make(map[string]int)
	nonCompliant := 0
	scoreSum := 0

	for _, rep := range reports {
		scoreSum += rep.Score
		if rep.Status == "Non-Compliant" {
			nonCompliant++
		}
		for _, v := range rep.Violations {
			if v.Regulation == "" {
				continue
			}
			countMap[v.Regulation]++
			severityMap[v.Severity]++
		}
	}

	stats := make([]RegulationStats, 0, len(countMap))
	for regulation, count := range countMap {
		stats = append(stats, RegulationStats{Regulation: regulation, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Count > stats[j].Count
	})
	if len(stats) > topN {
		stats = stats[:topN]
	}

	if len(reports) > 0 {
		fmt.Printf("non-compliant: %d / %d, mean score: %.1f\n",
			nonCompliant, len(reports), float64(scoreSum)/float64(len(reports)))
	}
	fmt.Printf("severity breakdown: critical=%d high=%d medium=%d low=%d\n",
		severityMap["critical"], severityMap["high"], severityMap["medium"], severityMap["low"])

	fmt.Printf("\nviolated regulations (top %d):\n", len(stats))
	for i, stat := range stats {
		fmt.Printf("%2d. %-40s : %6d\n", i+1, stat.Regulation, stat.Count)
	}

	return stats
}

// LoadFont searches common system font paths so regulation names render.
func LoadFont() (*truetype.Font, error) {
	fontPaths := []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
		"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
		"/System/Library/Fonts/Helvetica.ttc",
		"C:/Windows/Fonts/arial.ttf",
	}

	for _, path := range fontPaths {
		if fontData, err := os.ReadFile(path); err == nil {
			font, err := truetype.Parse(fontData)
			if err == nil {
				return font, nil
			}
		}
	}
	return nil, fmt.Errorf("no usable system font found")
}

// PlotHistogram renders the regulation counts as a PNG bar chart.
func (aa *AuditAnalyzer) PlotHistogram(stats []RegulationStats, savePath string) error {
	font, err := LoadFont()
	if err != nil {
		log.Printf("warning: %v, falling back to the default font", err)
		font = nil
	}

	xValues := make([]float64, len(stats))
	yValues := make([]float64, len(stats))
	labels := make([]string, len(stats))

	maxValue := 0.0
	for i, stat := range stats {
		xValues[i] = float64(i)
		yValues[i] = float64(stat.Count)
		labels[i] = stat.Regulation
		if yValues[i] > maxValue {
			maxValue = yValues[i]
		}
	}

	titleStyle := chart.Style{FontSize: 18}
	yAxisStyle := chart.Style{FontSize: 10}
	yAxisNameStyle := chart.Style{FontSize: 14}
	if font != nil {
		titleStyle.Font = font
		yAxisStyle.Font = font
		yAxisNameStyle.Font = font
	}

	graph := chart.Chart{
		Title:      fmt.Sprintf("Violated regulations (top %d)", len(stats)),
		TitleStyle: titleStyle,
		Width:      2400,
		Height:     1000,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    60,
				Left:   100,
				Right:  40,
				Bottom: 180,
			},
		},
		XAxis: chart.XAxis{
			Ticks: generateTicks(labels, font),
		},
		YAxis: chart.YAxis{
			Name:      "violation count",
			NameStyle: yAxisNameStyle,
			Style:     yAxisStyle,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Style: chart.Style{
					StrokeWidth: 0,
					FillColor:   drawing.ColorTransparent,
				},
				XValues: xValues,
				YValues: yValues,
			},
		},
	}

	graph.Elements = []chart.Renderable{
		func(r chart.Renderer, canvasBox chart.Box, defaults chart.Style) {
			barWidth := 30.0
			canvasWidth := float64(canvasBox.Width())
			canvasHeight := float64(canvasBox.Height())

			for i, stat := range stats {
				xRatio := float64(i) / float64(len(stats)-1)
				if len(stats) == 1 {
					xRatio = 0.5
				}
				yRatio := float64(stat.Count) / maxValue

				centerX := canvasBox.Left + int(xRatio*canvasWidth)
				barLeft := centerX - int(barWidth/2)
				barRight := centerX + int(barWidth/2)
				barTop := canvasBox.Top + int((1-yRatio)*canvasHeight)
				barBottom := canvasBox.Bottom

				intensity := uint8(80 + (175 * i / len(stats)))
				barColor := drawing.Color{R: 180, G: 60, B: intensity, A: 255}

				r.SetFillColor(barColor)
				r.SetStrokeColor(drawing.ColorBlack)
				r.SetStrokeWidth(0.5)

				r.MoveTo(barLeft, barTop)
				r.LineTo(barRight, barTop)
				r.LineTo(barRight, barBottom)
				r.LineTo(barLeft, barBottom)
				r.LineTo(barLeft, barTop)
				r.FillStroke()

				if font != nil {
					r.SetFont(font)
				}
				r.SetFontSize(8)
				r.SetFillColor(drawing.ColorBlack)

				label := fmt.Sprintf("%d", stat.Count)
				textBox := r.MeasureText(label)
				textX := centerX - textBox.Width()/2
				textY := barTop - 5

				r.Text(label, textX, textY)
			}
		},
	}

	f, err := os.Create(savePath)
	if err != nil {
		return fmt.Errorf("create file failed: %v", err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("render chart failed: %v", err)
	}

	fmt.Printf("\nhistogram saved to: %s\n", savePath)
	return nil
}

func generateTicks(labels []string, font *truetype.Font) []chart.Tick {
	ticks := make([]chart.Tick, len(labels))

	tickStyle := chart.Style{
		FontSize:            8,
		TextRotationDegrees: 60.0,
	}
	if font != nil {
		tickStyle.Font = font
	}

	for i, label := range labels {
		ticks[i] = chart.Tick{
			Value: float64(i),
			Label: label,
		}
	}
	return ticks
}

// Close closes the database connection.
func (aa *AuditAnalyzer) Close() error {
	if aa.db != nil {
		return aa.db.Close()
	}
	return nil
}

// Run executes the full analysis.
func (aa *AuditAnalyzer) Run(topN int, savePath string) error {
	reports, err := aa.FetchReports()
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Println("no audit reports found")
		return nil
	}

	stats := aa.AnalyzeViolations(reports, topN)
	if len(stats) == 0 {
		fmt.Println("no violations recorded, nothing to plot")
		return nil
	}
	return aa.PlotHistogram(stats, savePath)
}

func main() {
	dsn := flag.String("dsn", os.Getenv("DATABASE_DSN"), "mysql dsn of the audit database")
	topN := flag.Int("top", 30, "number of regulations to plot")
	out := flag.String("out", "violations_histogram.png", "output png path")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("a database dsn is required (-dsn or DATABASE_DSN)")
	}

	analyzer, err := NewAuditAnalyzer(*dsn)
	if err != nil {
		log.Fatalf("create analyzer failed: %v", err)
	}
	defer analyzer.Close()

	if err := analyzer.Run(*topN, *out); err != nil {
		log.Fatalf("analysis failed: %v", err)
	}
}
