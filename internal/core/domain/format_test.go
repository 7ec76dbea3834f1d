package domain

import "testing"

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		meters int
		want   string
	}{
		{850, "850m"},
		{999, "999m"},
		{1000, "1.0km"},
		{1850, "1.9km"},
		{12345, "12.3km"},
	}

	for _, tc := range tests {
		if got := FormatDistance(tc.meters); got != tc.want {
			t.Errorf("FormatDistance(%d) = %q, want %q", tc.meters, got, tc.want)
		}
	}
}

func TestDisplayDistanceWithRoute(t *testing.T) {
	// 850m drive, 11 min by car, 850/75 ≈ 11 min on foot
	got := DisplayDistance(850, 11)
	want := "850m (차량 11분, 도보 약 11분)"
	if got != want {
		t.Errorf("DisplayDistance = %q, want %q", got, want)
	}
}

func TestDisplayDistanceSentinel(t *testing.T) {
	// Zero distance means "unknown", not a zero-length route.
	if got := DisplayDistance(0, 0); got != AddressOnlyDisplay {
		t.Errorf("DisplayDistance(0,0) = %q, want %q", got, AddressOnlyDisplay)
	}
	if got := DisplayDistance(500, 0); got != AddressOnlyDisplay {
		t.Errorf("distance without duration = %q, want %q", got, AddressOnlyDisplay)
	}
}
