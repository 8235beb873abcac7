package geo

import (
	"math"
	"testing"
)

func TestLinearUnit(t *testing.T) {
	tests := []struct {
		name      string
		srs       *SpatialReference
		wantName  string
		wantScale float64
		wantErr   bool
	}{
		{"nil", nil, "", 0, true},
		{"geographic", &SpatialReference{EPSG: 4326, Model: ModelGeographic}, "degree", 1.0, false},
		{"metre", &SpatialReference{Model: ModelProjected, LinearUnitCode: UnitMetre}, "metre", 1.0, false},
		{"foot", &SpatialReference{Model: ModelProjected, LinearUnitCode: UnitFoot}, "foot", 0.3048, false},
		{"us survey foot", &SpatialReference{Model: ModelProjected, LinearUnitCode: UnitFootUSSurvey}, "US survey foot", 1200.0 / 3937.0, false},
		{"kilometre", &SpatialReference{Model: ModelProjected, LinearUnitCode: UnitKilometre}, "kilometre", 1000.0, false},
		{"projected default", &SpatialReference{EPSG: 32633, Model: ModelProjected}, "metre", 1.0, false},
		{"user-defined with size", &SpatialReference{Model: ModelProjected, LinearUnitCode: 32767, LinearUnitSize: 0.5}, "user-defined", 0.5, false},
		{"user-defined without size", &SpatialReference{Model: ModelProjected, LinearUnitCode: 32767}, "", 0, true},
		{"unknown code", &SpatialReference{Model: ModelProjected, LinearUnitCode: 9999}, "", 0, true},
		{"no information at all", &SpatialReference{}, "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, scale, err := tt.srs.LinearUnit()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("LinearUnit() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("LinearUnit() error = %v", err)
			}
			if name != tt.wantName {
				t.Errorf("LinearUnit() name = %q, want %q", name, tt.wantName)
			}
			if math.Abs(scale-tt.wantScale) > 1e-12 {
				t.Errorf("LinearUnit() scale = %v, want %v", scale, tt.wantScale)
			}
		})
	}
}

func TestSpatialReferenceString(t *testing.T) {
	tests := []struct {
		name string
		srs  *SpatialReference
		want string
	}{
		{"nil", nil, "none"},
		{"epsg and citation", &SpatialReference{EPSG: 2056, Citation: "CH1903+ / LV95"}, "EPSG:2056 (CH1903+ / LV95)"},
		{"epsg only", &SpatialReference{EPSG: 4326}, "EPSG:4326"},
		{"citation only", &SpatialReference{Citation: "Local grid"}, "Local grid"},
		{"empty", &SpatialReference{}, "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.srs.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
