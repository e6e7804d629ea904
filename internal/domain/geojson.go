package domain

// FeatureCollection is the GeoJSON container the zone dataset is stored in.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a zone with its polygon.
type Feature struct {
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
	Geometry   Geometry   `json:"geometry"`
}

// Properties is a zone plus the score attached for display. HVI and Breakdown
// are nil until the feature has been scored.
type Properties struct {
	Zone
	HVI       *float64   `json:"hvi,omitempty"`
	Breakdown *Breakdown `json:"hvi_breakdown,omitempty"`
}

// Geometry is a GeoJSON polygon in [lon, lat] order.
type Geometry struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

// NewFeatureCollection wraps features in a collection.
func NewFeatureCollection(features []Feature) FeatureCollection {
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}

// Zones returns the zone of every feature in order.
func (fc FeatureCollection) Zones() []Zone {
	zones := make([]Zone, len(fc.Features))
	for i := range fc.Features {
		zones[i] = fc.Features[i].Properties.Zone
	}
	return zones
}

// Clone returns a deep copy that shares no memory with fc.
func (fc FeatureCollection) Clone() FeatureCollection {
	features := make([]Feature, len(fc.Features))
	for i, f := range fc.Features {
		features[i] = f.Clone()
	}
	return FeatureCollection{Type: fc.Type, Features: features}
}

// Clone returns a deep copy of the feature.
func (f Feature) Clone() Feature {
	out := f
	if f.Properties.HVI != nil {
		hvi := *f.Properties.HVI
		out.Properties.HVI = &hvi
	}
	if f.Properties.Breakdown != nil {
		b := *f.Properties.Breakdown
		out.Properties.Breakdown = &b
	}
	out.Geometry.Coordinates = make([][][2]float64, len(f.Geometry.Coordinates))
	for i, ring := range f.Geometry.Coordinates {
		out.Geometry.Coordinates[i] = append([][2]float64(nil), ring...)
	}
	return out
}

// Scored returns a copy of f with the score for w and s attached.
func (f Feature) Scored(w Weights, s Scenario) (Feature, Score) {
	score := ComputeScore(f.Properties.Zone, w, s)
	out := f
	hvi := score.HVI
	b := score.Breakdown
	out.Properties.HVI = &hvi
	out.Properties.Breakdown = &b
	return out, score
}
