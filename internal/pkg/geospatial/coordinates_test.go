package geospatial

import (
	"math"
	"testing"
)

func near(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestParseDD(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLat float64
		wantLng float64
		wantOK  bool
	}{
		{"comma space", "40.123456, -74.567890", 40.123456, -74.567890, true},
		{"comma only", "40.123456,-74.567890", 40.123456, -74.567890, true},
		{"space only", "40.123456 -74.567890", 40.123456, -74.567890, true},
		{"extra whitespace", "  40.5 \t  29.25  ", 40.5, 29.25, true},
		{"integers", "41, 29", 41, 29, true},
		{"trailing garbage", "40.1, -74.5abc", 0, 0, false},
		{"leading garbage", "x40.1, -74.5", 0, 0, false},
		{"lat out of range", "91.0, 10.0", 0, 0, false},
		{"lng out of range", "10.0, 181.0", 0, 0, false},
		{"empty", "", 0, 0, false},
		{"single number", "40.1", 0, 0, false},
		{"dms input", `40°42'4.495"N, 74°34'4.404"W`, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := ParseDD(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseDD(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if c.Latitude != tt.wantLat || c.Longitude != tt.wantLng {
				t.Errorf("ParseDD(%q) = %+v, want (%v, %v)", tt.input, c, tt.wantLat, tt.wantLng)
			}
		})
	}
}

func TestParseDMS(t *testing.T) {
	c, ok := ParseDMS(`40°42'4.495"N, 74°34'4.404"W`)
	if !ok {
		t.Fatal("expected DMS to parse")
	}
	wantLat := 40 + 42.0/60 + 4.495/3600
	wantLng := -(74 + 34.0/60 + 4.404/3600)
	if !near(c.Latitude, wantLat, 1e-12) || !near(c.Longitude, wantLng, 1e-12) {
		t.Errorf("got %+v, want (%v, %v)", c, wantLat, wantLng)
	}

	c, ok = ParseDMS("33 52 10.5 s, 151 12 30 e")
	if !ok {
		t.Fatal("expected space separated lower-case DMS to parse")
	}
	if c.Latitude >= 0 || c.Longitude <= 0 {
		t.Errorf("hemisphere signs wrong: %+v", c)
	}

	rejects := []struct{ input, why string }{
		{`40°60'0"N, 74°0'0"W`, "minutes >= 60"},
		{`40°10'60"N, 74°0'0"W`, "seconds >= 60"},
		{`91°0'0"N, 74°0'0"W`, "latitude degrees > 90"},
		{`40°0'0"N, 181°0'0"W`, "longitude degrees > 180"},
		{`40°0'0"E, 74°0'0"W`, "wrong hemisphere for latitude"},
		{`40°0'0"N, 74°0'0"N`, "wrong hemisphere for longitude"},
		{`40°0'0"N 74°0'0"W`, "no comma"},
		{`40°0'0"N, 74°0'0"W, 1°0'0"E`, "three parts"},
		{`90°0'1"N, 0°0'0"E`, "beyond the pole"},
		{"40.123456, -74.567890", "decimal degrees"},
	}
	for _, r := range rejects {
		if c, ok := ParseDMS(r.input); ok {
			t.Errorf("ParseDMS(%q) = %+v, want failure (%s)", r.input, c, r.why)
		}
	}
}

func TestParseDDM(t *testing.T) {
	c, ok := ParseDDM(`40°42.075'N, 74°34.073'W`)
	if !ok {
		t.Fatal("expected DDM to parse")
	}
	if !near(c.Latitude, 40+42.075/60, 1e-12) || !near(c.Longitude, -(74+34.073/60), 1e-12) {
		t.Errorf("got %+v", c)
	}

	if _, ok := ParseDDM(`40°60.5'N, 74°1'W`); ok {
		t.Error("expected minutes >= 60 to fail")
	}
	if _, ok := ParseDDM(`40°42.075'X, 74°34.073'W`); ok {
		t.Error("expected unknown hemisphere to fail")
	}
}

func TestParseAutoAndDetect(t *testing.T) {
	tests := []struct {
		input string
		want  Notation
	}{
		{"40.123456, -74.567890", NotationDD},
		{`40°42'4.495"N, 74°34'4.404"W`, NotationDMS},
		{`40°42.075'N, 74°34.073'W`, NotationDDM},
		{"somewhere over the rainbow", NotationUnknown},
		{"", NotationUnknown},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.input); got != tt.want {
			t.Errorf("DetectFormat(%q) = %s, want %s", tt.input, got, tt.want)
		}
		_, ok := ParseAuto(tt.input)
		if ok != (tt.want != NotationUnknown) {
			t.Errorf("ParseAuto(%q) ok = %v", tt.input, ok)
		}
	}
}

func TestNotationParse(t *testing.T) {
	if _, ok := ParseNotation("dms").Parse("40.1, 29.2"); ok {
		t.Error("DMS notation should not accept DD input")
	}
	if _, ok := ParseNotation("").Parse("40.1, 29.2"); !ok {
		t.Error("unknown notation should fall back to auto detection")
	}
}

func TestFormatDDRoundTrip(t *testing.T) {
	for lat := -90.0; lat <= 90; lat += 7.3 {
		for lng := -180.0; lng <= 180; lng += 13.7 {
			c, ok := ParseDD(FormatDD(lat, lng))
			if !ok {
				t.Fatalf("round trip failed for (%v, %v)", lat, lng)
			}
			if !near(c.Latitude, lat, 1e-6) || !near(c.Longitude, lng, 1e-6) {
				t.Fatalf("round trip (%v, %v) -> %+v", lat, lng, c)
			}
		}
	}
}

func TestFormatters(t *testing.T) {
	if got := FormatDD(40.123456, -74.56789); got != "40.123456, -74.567890" {
		t.Errorf("FormatDD = %q", got)
	}
	if got := FormatDMS(40.5, -74.25); got != `40°30'0.000"N, 74°15'0.000"W` {
		t.Errorf("FormatDMS = %q", got)
	}
	if got := FormatDDM(-33.5, 151.25); got != `33°30.000'S, 151°15.000'E` {
		t.Errorf("FormatDDM = %q", got)
	}

	for _, f := range []func(float64, float64) string{FormatDD, FormatDMS, FormatDDM} {
		if got := f(95, 0); got != "" {
			t.Errorf("expected empty string for out of range input, got %q", got)
		}
	}
}

func TestFormatDMSParsesBack(t *testing.T) {
	lat, lng := 41.0082, 28.9784
	c, ok := ParseDMS(FormatDMS(lat, lng))
	if !ok {
		t.Fatal("formatted DMS did not parse")
	}
	if !near(c.Latitude, lat, 1e-6) || !near(c.Longitude, lng, 1e-6) {
		t.Errorf("got %+v", c)
	}

	c, ok = ParseDDM(FormatDDM(lat, lng))
	if !ok {
		t.Fatal("formatted DDM did not parse")
	}
	if !near(c.Latitude, lat, 1e-4) || !near(c.Longitude, lng, 1e-4) {
		t.Errorf("got %+v", c)
	}
}

func TestFormatCarriesRoundedUnits(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"dms seconds carry", FormatDMS(40.99999999, 28.99999999), `41°0'0.000"N, 29°0'0.000"E`},
		{"dms southern west", FormatDMS(-40.99999999, -28.99999999), `41°0'0.000"S, 29°0'0.000"W`},
		{"ddm minutes carry", FormatDDM(40.9999999, 28.9999999), `41°0.000'N, 29°0.000'E`},
		{"dms pole", FormatDMS(89.99999999, 179.99999999), `90°0'0.000"N, 180°0'0.000"E`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}

	if _, ok := ParseDMS(FormatDMS(40.99999999, 28.99999999)); !ok {
		t.Error("carried DMS output did not parse")
	}
	if _, ok := ParseDDM(FormatDDM(40.9999999, 28.9999999)); !ok {
		t.Error("carried DDM output did not parse")
	}
	if _, ok := ParseDMS(FormatDMS(89.99999999, 179.99999999)); !ok {
		t.Error("carried DMS output at the pole did not parse")
	}
}
