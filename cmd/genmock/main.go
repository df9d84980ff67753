// Command genmock generates deterministic raw forecast fixtures mirroring the
// remote document store's wire format, one JSON file per beach plus a beach
// directory. The fixtures feed cmd/validate and local development against a
// file-backed mock.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/surfcast/internal/domain"
)

// baseTime anchors every generated timestamp so output is reproducible.
var baseTime = time.Date(2025, time.August, 11, 0, 0, 0, 0, time.UTC)

const hoursPerBeach = 72

// document is the remote store's wire envelope: the document id alongside the
// raw forecast payload.
type document struct {
	ID string `json:"id"`
	domain.RawForecast
}

type beachDef struct {
	id     int64
	region string
	name   string
	order  int
}

var beaches = []beachDef{
	{id: 2001, region: "jeju", name: "Jungmun", order: 1},
	{id: 2002, region: "jeju", name: "Iho Tewoo", order: 1},
	{id: 3001, region: "busan", name: "Songjeong", order: 2},
	{id: 3002, region: "busan", name: "Haeundae", order: 2},
	{id: 4001, region: "gangwon", name: "Jukdo", order: 3},
	{id: 5001, region: "chungnam", name: "Mallipo", order: 4},
	{id: 6001, region: "pohang", name: "Yonghan", order: 5},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for fixture files")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	clock := clockwork.NewFakeClockAt(baseTime)

	var total int
	for _, b := range beaches {
		docs := generateBeach(b, clock.Now())
		path := filepath.Join(*out, b.region, fmt.Sprintf("%d.json", b.id))
		if err := writeJSON(path, docs); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		total += len(docs)
		log.Printf("%s/%d (%s): %d documents", b.region, b.id, b.name, len(docs))
	}

	if err := writeJSON(filepath.Join(*out, "beaches.json"), directory()); err != nil {
		return fmt.Errorf("writing beach directory: %w", err)
	}

	log.Printf("total: %d documents across %d beaches", total, len(beaches))
	return nil
}

// generateBeach produces one metadata marker plus hourly forecast documents.
// Values are smooth functions of the hour with a per-beach phase shift, with
// sentinel readings, missing sensors, and sparse rows injected at fixed
// intervals so downstream handling stays exercised.
func generateBeach(b beachDef, start time.Time) []document {
	docs := make([]document, 0, hoursPerBeach+1)

	meta := document{ID: domain.MetadataDocID}
	meta.BeachID = &b.id
	meta.Region = &b.region
	docs = append(docs, meta)

	seed := float64(b.id % 97)
	for h := 0; h < hoursPerBeach; h++ {
		t := start.Add(time.Duration(h) * time.Hour)
		doc := document{ID: fmt.Sprintf("%d-%d", b.id, t.Unix())}
		doc.BeachID = &b.id
		doc.Region = &b.region
		doc.Beach = &b.name
		ts := t.Unix()
		doc.Timestamp = &ts
		dt := t.Format("2006-01-02 15:04")
		doc.Datetime = &dt

		if h%29 == 7 {
			// Sparse row: timestamp only, no sensor payload.
			docs = append(docs, doc)
			continue
		}

		phase := float64(h) + seed
		wind := 3.0 + 2.5*math.Sin(phase/6)
		windDir := math.Mod(180+120*math.Sin(phase/9), 360)
		waveHeight := 0.8 + 0.6*math.Sin(phase/5)
		airTemp := 24 + 4*math.Sin(phase/12)
		seaTemp := 21 + 1.5*math.Sin(phase/24)
		waveDir := math.Mod(150+90*math.Cos(phase/9), 360)
		humidity := 60 + 35*math.Sin(phase/7)
		precipProb := math.Max(0, 80*math.Sin(phase/10))

		if h%13 != 3 {
			doc.WindSpeed = &wind
			doc.WindDirection = &windDir
		}
		if h%17 == 5 {
			// Sentinel placeholder from the primary sensor.
			sentinel := -999.0
			doc.WaveHeight = &sentinel
		} else {
			doc.WaveHeight = &waveHeight
		}
		doc.OMWaveHeight = &waveHeight
		doc.OMWaveDirection = &waveDir
		doc.OMSeaSurfaceTemp = &seaTemp
		doc.AirTemperature = &airTemp
		doc.Humidity = &humidity
		doc.PrecipProbability = &precipProb

		sky := 1 + (h/6)%4
		doc.SkyCondition = &sky
		precip := 0
		if h%24 >= 20 {
			precip = 1
		}
		doc.PrecipType = &precip

		docs = append(docs, doc)
	}

	return docs
}

func directory() []domain.Beach {
	out := make([]domain.Beach, 0, len(beaches))
	for _, b := range beaches {
		out = append(out, domain.Beach{
			ID:          b.id,
			Region:      b.region,
			RegionName:  b.region,
			RegionOrder: b.order,
			Name:        b.name,
		})
	}
	return out
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
