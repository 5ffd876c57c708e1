package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/model"
)

// Format is the encoding of a request file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFromPath picks the format by extension; anything but .yaml/.yml is JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode reads a payload. Unknown fields are rejected.
func Decode(r io.Reader, format Format) (Payload, error) {
	var p Payload
	switch format {
	case FormatYAML:
		data, err := io.ReadAll(r)
		if err != nil {
			return p, fmt.Errorf("reading request: %w", err)
		}
		if err := yaml.UnmarshalStrict(data, &p); err != nil {
			return p, fmt.Errorf("decoding request: %w", err)
		}
	default:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return p, fmt.Errorf("decoding request: %w", err)
		}
	}
	return p, nil
}

// Load decodes and validates the request file at path.
func Load(path string) (Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Payload{}, fmt.Errorf("reading request: %w", err)
	}
	p, err := Decode(bytes.NewReader(data), FormatFromPath(path))
	if err != nil {
		return p, err
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Defaults fill the fields a payload leaves empty.
type Defaults struct {
	Horizon     int
	Cadence     forecast.Cadence
	Seasonality string           // profile applied to inputs without a pattern
	Now         func() time.Time // start date when the payload has none; nil means time.Now
}

// Overrides replace payload values, e.g. from command-line flags. Zero
// fields leave the payload alone.
type Overrides struct {
	Horizon         int
	Cadence         forecast.Cadence
	StartDate       time.Time
	StartingBalance *float64
}

// ToRequest converts a validated payload into an engine request. The start
// date and cadence are settled before the seasonality profile is rotated, so
// pattern[0] always lines up with the first forecast period.
func (p Payload) ToRequest(d Defaults, o Overrides) (forecast.Request, error) {
	req := forecast.Request{
		StartingBalance: p.StartingBalance,
		Horizon:         firstNonZero(o.Horizon, p.Horizon, d.Horizon),
	}
	if o.StartingBalance != nil {
		req.StartingBalance = o.StartingBalance
	}

	switch {
	case !o.StartDate.IsZero():
		req.StartDate = o.StartDate
	case p.StartDate != "":
		start, err := parseDate(p.StartDate)
		if err != nil {
			return req, fmt.Errorf("%w: startDate: %v", ErrInvalid, err)
		}
		req.StartDate = start
	default:
		now := d.Now
		if now == nil {
			now = time.Now
		}
		req.StartDate = now()
	}

	cadence := d.Cadence
	if p.Cadence != "" {
		c, err := forecast.ParseCadence(p.Cadence)
		if err != nil {
			return req, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		cadence = c
	}
	if o.Cadence != "" {
		cadence = o.Cadence
	}
	req.Cadence = cadence

	var profile []float64
	if name := firstNonEmpty(p.Seasonality, d.Seasonality); name != "" {
		pattern, ok := config.SeasonalityProfileAt(name, cadence, req.StartDate)
		if !ok {
			return req, fmt.Errorf("%w: unknown seasonality profile %q", ErrInvalid, name)
		}
		profile = pattern
	}

	req.Categories = make([]model.CashFlowCategory, 0, len(p.Categories))
	for _, c := range p.Categories {
		cat := model.CashFlowCategory{
			Name:          c.Name,
			IsInflow:      c.IsInflow,
			Subcategories: make([]model.ForecastInput, 0, len(c.Subcategories)),
		}
		for _, in := range c.Subcategories {
			fi := in.toModel()
			if len(fi.SeasonalityPattern) == 0 && profile != nil {
				fi.SeasonalityPattern = profile
			}
			cat.Subcategories = append(cat.Subcategories, fi)
		}
		req.Categories = append(req.Categories, cat)
	}

	for _, dr := range p.Drivers {
		req.Drivers = append(req.Drivers, model.ForecastDriver{
			Name:        dr.Name,
			Values:      dr.Values,
			Description: dr.Description,
		})
	}
	return req, nil
}

func firstNonZero(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
