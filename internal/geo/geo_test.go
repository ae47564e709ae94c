package geo

import "testing"

func TestPoint_Valid(t *testing.T) {
	tests := []struct {
		name  string
		point Point
		want  bool
	}{
		{"valid", Point{Lat: 38.64, Lon: -90.29}, true},
		{"lat too high", Point{Lat: 95, Lon: 0}, false},
		{"lat too low", Point{Lat: -95, Lon: 0}, false},
		{"lon too high", Point{Lat: 0, Lon: 200}, false},
		{"lon too low", Point{Lat: 0, Lon: -200}, false},
		{"boundary", Point{Lat: 90, Lon: -180}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.point.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBBox_Extend(t *testing.T) {
	b := NewBBox()
	if b.Valid() {
		t.Error("empty box should not be valid")
	}

	b = b.Extend(38.64, -90.29)
	if !b.Valid() {
		t.Error("box with one point should be valid")
	}

	b = b.Extend(38.60, -90.20)
	if b.South != 38.60 || b.North != 38.64 || b.West != -90.29 || b.East != -90.20 {
		t.Errorf("unexpected box: %+v", b)
	}

	c := b.Center()
	if c.Lat != 38.62 || c.Lon != -90.245 {
		t.Errorf("unexpected center: %+v", c)
	}
}

func TestBBox_Union(t *testing.T) {
	a := NewBBox().Extend(38.60, -90.30).Extend(38.62, -90.28)
	b := NewBBox().Extend(38.64, -90.22).Extend(38.66, -90.20)

	u := a.Union(b)
	if u.South != 38.60 || u.North != 38.66 || u.West != -90.30 || u.East != -90.20 {
		t.Errorf("unexpected union: %+v", u)
	}
}
