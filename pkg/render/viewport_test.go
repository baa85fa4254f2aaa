package render

import "testing"

func TestViewport_At(t *testing.T) {
	tcs := []struct {
		name          string
		width, height int
		x, y          int
		want          complex128
	}{
		{name: "square center", width: 256, height: 256, x: 128, y: 128, want: 0},
		{name: "square top-left", width: 256, height: 256, x: 0, y: 0, want: complex(-2, 2)},
		{name: "square root one", width: 256, height: 256, x: 192, y: 128, want: 1},
		{name: "wide center", width: 200, height: 100, x: 100, y: 50, want: 0},
		{name: "wide left edge", width: 200, height: 100, x: 0, y: 50, want: -4},
		{name: "wide top edge", width: 200, height: 100, x: 100, y: 0, want: complex(0, 2)},
		{name: "tall top edge", width: 100, height: 200, x: 50, y: 0, want: complex(0, 4)},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			got := NewViewport(tc.width, tc.height).At(tc.x, tc.y)
			if got != tc.want {
				t.Errorf("At(%d, %d) = %v, want %v", tc.x, tc.y, got, tc.want)
			}
		})
	}
}

func TestViewport_Pixel(t *testing.T) {
	v := NewViewport(320, 240)

	for _, pt := range [][2]int{{0, 0}, {160, 120}, {319, 239}, {17, 203}} {
		x, y := v.Pixel(v.At(pt[0], pt[1]))
		if x != pt[0] || y != pt[1] {
			t.Errorf("Pixel(At(%d, %d)) = (%d, %d)", pt[0], pt[1], x, y)
		}
	}
}
