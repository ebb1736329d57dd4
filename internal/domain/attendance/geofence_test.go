package attendance

import (
	"errors"
	"math"
	"testing"
)

func TestDistanceKnownPoints(t *testing.T) {
	// Paris to London is roughly 344 km.
	paris := Point{Latitude: 48.8566, Longitude: 2.3522}
	london := Point{Latitude: 51.5074, Longitude: -0.1278}

	got := Distance(paris, london)
	if math.Abs(got-344000) > 5000 {
		t.Fatalf("Distance(paris, london) = %.0fm, want about 344000m", got)
	}
}

func TestDistanceZero(t *testing.T) {
	p := Point{Latitude: 6.9271, Longitude: 79.8612}
	if got := Distance(p, p); got != 0 {
		t.Fatalf("Distance(p, p) = %f, want 0", got)
	}
}

func TestCheckRadiusInside(t *testing.T) {
	office := Point{Latitude: 40.7128, Longitude: -74.0060}
	nearby := Point{Latitude: 40.7129, Longitude: -74.0060}

	if err := CheckRadius(nearby, office, 50); err != nil {
		t.Fatalf("CheckRadius inside: unexpected error %v", err)
	}
}

func TestCheckRadiusBoundaryInclusive(t *testing.T) {
	office := Point{Latitude: 0, Longitude: 0}
	pos := Point{Latitude: 0.0001, Longitude: 0}
	distance := Distance(pos, office)

	if err := CheckRadius(pos, office, distance); err != nil {
		t.Fatalf("CheckRadius at exact boundary should pass, got %v", err)
	}
}

func TestCheckRadiusOutside(t *testing.T) {
	office := Point{Latitude: 40.7128, Longitude: -74.0060}
	far := Point{Latitude: 40.7300, Longitude: -74.0060}

	err := CheckRadius(far, office, 100)
	if err == nil {
		t.Fatal("CheckRadius outside radius should fail")
	}
	var outOfRange *OutOfRangeError
	if !errors.As(err, &outOfRange) {
		t.Fatalf("error type = %T, want *OutOfRangeError", err)
	}
	if outOfRange.DistanceMeters <= outOfRange.RadiusMeters {
		t.Fatalf("reported distance %dm not greater than radius %dm", outOfRange.DistanceMeters, outOfRange.RadiusMeters)
	}
	if outOfRange.RadiusMeters != 100 {
		t.Fatalf("reported radius = %dm, want 100m", outOfRange.RadiusMeters)
	}
}

func TestCheckRadiusZeroRequiresCoincidence(t *testing.T) {
	office := Point{Latitude: 10, Longitude: 10}
	if err := CheckRadius(office, office, 0); err != nil {
		t.Fatalf("same point with zero radius should pass, got %v", err)
	}
	if err := CheckRadius(Point{Latitude: 10.001, Longitude: 10}, office, 0); err == nil {
		t.Fatal("distinct point with zero radius should fail")
	}
}
