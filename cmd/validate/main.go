// Command validate runs integrity checks over a generated forecast fixture:
// it loads every beach file, pushes the documents through the real
// normalization path, and verifies the invariants the app relies on
// (marker skipping, sentinel handling, classification codes, period bounds,
// ordering, day bucketing).
//
// Usage:
//
//	go run ./cmd/validate -fixture-dir data/mock
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/couchcryptid/surfcast/internal/domain"
)

// document is the remote store's wire envelope, matching genmock output.
type document struct {
	ID string `json:"id"`
	domain.RawForecast
}

// beachFixture is one beach's loaded documents plus its normalization output.
type beachFixture struct {
	region  string
	beachID int64
	docs    []document
	charts  []domain.Chart
	stats   domain.NormalizeStats
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	fixtureDir := flag.String("fixture-dir", "", "directory containing genmock fixture files")
	flag.Parse()

	if *fixtureDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*fixtureDir); code != 0 {
		os.Exit(code)
	}
}

func run(fixtureDir string) int {
	fmt.Println("=== Forecast Fixture Validation ===")
	fmt.Println()

	fixtures, err := loadFixtures(fixtureDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load fixtures: %v\n", err)
		return 1
	}
	if len(fixtures) == 0 {
		fmt.Fprintf(os.Stderr, "FATAL: no beach fixtures under %s\n", fixtureDir)
		return 1
	}

	for i := range fixtures {
		f := &fixtures[i]
		rows := make([]domain.RawForecast, 0, len(f.docs))
		for _, d := range f.docs {
			raw := d.RawForecast
			raw.DocumentID = d.ID
			rows = append(rows, raw)
		}
		f.charts, f.stats = domain.NormalizeForecasts(rows, f.beachID, time.Time{})
	}

	phases := []*phase{
		validateShape(fixtures),
		validateNormalization(fixtures),
		validateSentinelHandling(fixtures),
		validateClassification(fixtures),
		validateDayBuckets(fixtures),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-40s %s\n", p.name, status)
	}

	var docs, charts, skipped, sparse int
	for _, f := range fixtures {
		docs += len(f.docs)
		charts += len(f.charts)
		skipped += f.stats.Skipped
		sparse += f.stats.Sparse
	}
	fmt.Println()
	fmt.Printf("Beaches: %d, documents: %s, charts: %s, skipped: %s, sparse: %s\n",
		len(fixtures),
		humanize.Comma(int64(docs)), humanize.Comma(int64(charts)),
		humanize.Comma(int64(skipped)), humanize.Comma(int64(sparse)))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// loadFixtures walks region subdirectories for per-beach document files.
func loadFixtures(dir string) ([]beachFixture, error) {
	var fixtures []beachFixture

	regions, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, region := range regions {
		if !region.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(dir, region.Name()))
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			if filepath.Ext(file.Name()) != ".json" {
				continue
			}
			path := filepath.Join(dir, region.Name(), file.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			var docs []document
			if err := json.Unmarshal(data, &docs); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}

			var beachID int64
			if _, err := fmt.Sscanf(file.Name(), "%d.json", &beachID); err != nil {
				return nil, fmt.Errorf("%s: filename is not a beach id", path)
			}
			fixtures = append(fixtures, beachFixture{
				region:  region.Name(),
				beachID: beachID,
				docs:    docs,
			})
		}
	}
	return fixtures, nil
}

// validateShape checks the raw documents before normalization.
func validateShape(fixtures []beachFixture) *phase {
	p := &phase{name: "Phase 1: Fixture shape"}

	for _, f := range fixtures {
		var markers int
		seen := map[string]bool{}
		for i, d := range f.docs {
			if d.ID == "" {
				p.errorf("%s/%d doc %d: empty document id", f.region, f.beachID, i)
				continue
			}
			if seen[d.ID] {
				p.errorf("%s/%d: duplicate document id %q", f.region, f.beachID, d.ID)
			}
			seen[d.ID] = true
			if d.ID == domain.MetadataDocID {
				markers++
				continue
			}
			if d.Timestamp == nil {
				p.errorf("%s/%d doc %q: missing timestamp", f.region, f.beachID, d.ID)
			}
		}
		if markers != 1 {
			p.errorf("%s/%d: expected exactly one metadata marker, found %d", f.region, f.beachID, markers)
		}
	}
	return p
}

// validateNormalization checks counts and ordering of the normalized output.
func validateNormalization(fixtures []beachFixture) *phase {
	p := &phase{name: "Phase 2: Normalization integrity"}

	for _, f := range fixtures {
		expected := len(f.docs) - f.stats.Skipped
		if len(f.charts) != expected {
			p.errorf("%s/%d: %d docs, %d skipped, but %d charts",
				f.region, f.beachID, len(f.docs), f.stats.Skipped, len(f.charts))
		}
		if f.stats.Skipped < 1 {
			p.errorf("%s/%d: metadata marker was not skipped", f.region, f.beachID)
		}
		for i := 1; i < len(f.charts); i++ {
			if f.charts[i].Time.Before(f.charts[i-1].Time) {
				p.errorf("%s/%d: charts out of order at index %d", f.region, f.beachID, i)
			}
		}
		for i, c := range f.charts {
			if c.BeachID != f.beachID {
				p.errorf("%s/%d chart %d: beach id %d", f.region, f.beachID, i, c.BeachID)
			}
		}
	}
	return p
}

// validateSentinelHandling checks that sentinel readings never reach charts
// and that the secondary marine model fills in where it can.
func validateSentinelHandling(fixtures []beachFixture) *phase {
	p := &phase{name: "Phase 3: Sentinel wave heights"}

	for _, f := range fixtures {
		chartsByUnix := map[int64]domain.Chart{}
		for _, c := range f.charts {
			chartsByUnix[c.Time.Unix()] = c
		}

		for _, d := range f.docs {
			if d.ID == domain.MetadataDocID || d.Timestamp == nil || d.WaveHeight == nil {
				continue
			}
			raw := *d.WaveHeight
			if raw >= -900 && raw < 900 {
				continue
			}

			chart, ok := chartsByUnix[*d.Timestamp]
			if !ok {
				continue
			}
			switch {
			case chart.WaveHeight == nil:
				if d.OMWaveHeight != nil && *d.OMWaveHeight >= -900 && *d.OMWaveHeight < 900 {
					p.errorf("%s/%d doc %q: secondary reading %g was not used as fallback",
						f.region, f.beachID, d.ID, *d.OMWaveHeight)
				}
			case *chart.WaveHeight == raw:
				p.errorf("%s/%d doc %q: sentinel %g leaked into chart", f.region, f.beachID, d.ID, raw)
			}
		}

		for i, c := range f.charts {
			if c.WaveHeight != nil && (*c.WaveHeight < -900 || *c.WaveHeight >= 900) {
				p.errorf("%s/%d chart %d: wave height %g outside plausible band",
					f.region, f.beachID, i, *c.WaveHeight)
			}
		}
	}
	return p
}

// validateClassification spot-checks weather codes and the wave period bounds.
func validateClassification(fixtures []beachFixture) *phase {
	p := &phase{name: "Phase 4: Classification and period"}

	for _, f := range fixtures {
		for i, c := range f.charts {
			if domain.ConditionFromCode(c.Weather.Code()) != c.Weather {
				p.errorf("%s/%d chart %d: weather code %q does not round-trip",
					f.region, f.beachID, i, c.Weather.Code())
			}
			if c.WavePeriod != 0 && (c.WavePeriod < 2 || c.WavePeriod > 18) {
				p.errorf("%s/%d chart %d: wave period %g outside [2, 18]",
					f.region, f.beachID, i, c.WavePeriod)
			}
			if c.WindSpeed > 0 && c.WavePeriod == 0 {
				p.errorf("%s/%d chart %d: wind %g but no period estimate",
					f.region, f.beachID, i, c.WindSpeed)
			}
		}
	}
	return p
}

// validateDayBuckets checks that day grouping preserves every chart and keeps
// both buckets and their contents ordered.
func validateDayBuckets(fixtures []beachFixture) *phase {
	p := &phase{name: "Phase 5: Day bucketing"}

	for _, f := range fixtures {
		buckets := domain.GroupChartsByDay(f.charts)

		var total int
		for i, b := range buckets {
			total += len(b.Charts)
			if i > 0 && !buckets[i-1].Day.Before(b.Day) {
				p.errorf("%s/%d: buckets out of order at %d", f.region, f.beachID, i)
			}
			for j, c := range b.Charts {
				if j > 0 && b.Charts[j-1].Time.After(c.Time) {
					p.errorf("%s/%d bucket %s: charts out of order",
						f.region, f.beachID, b.Day.Format("2006-01-02"))
				}
				day := time.Date(c.Time.Year(), c.Time.Month(), c.Time.Day(), 0, 0, 0, 0, c.Time.Location())
				if !day.Equal(b.Day) {
					p.errorf("%s/%d: chart %s landed in bucket %s",
						f.region, f.beachID, c.Time.Format(time.RFC3339), b.Day.Format("2006-01-02"))
				}
			}
		}
		if total != len(f.charts) {
			p.errorf("%s/%d: %d charts in, %d across buckets", f.region, f.beachID, len(f.charts), total)
		}
	}
	return p
}
