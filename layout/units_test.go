package layout

import (
	"math"
	"testing"
)

// TestPxPtRoundTrip 验证 px↔pt 换算的往返精度（允许极小的浮点误差）。
func TestPxPtRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 64, 96, 144, 1000}
	for _, px := range samples {
		pt := PxToPt(px)
		back := PtToPx(pt)
		if diff := math.Abs(back - px); diff > 1e-9 {
			t.Fatalf("px→pt→px 往返误差过大: in=%gpx pt=%g back=%g diff=%g", px, pt, back, diff)
		}
	}
}

// TestPxToPtMatchesMm 画布按 1px = 1mm 光栅化，因此 PxToPt 与 mm→pt 一致。
func TestPxToPtMatchesMm(t *testing.T) {
	if got := PxToPt(10); math.Abs(got-10*MmToPt) > 1e-9 {
		t.Fatalf("10px 转 pt 期望 %g，实际 %g", 10*MmToPt, got)
	}
}
