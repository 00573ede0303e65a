package layout

import (
	"math"
	"math/rand"
	"reflect"
	"testing"
)

const eps = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) <= eps }

// fixedMeasurer 返回预设宽度，未登记的字符串按每字符 10px 计算。
type fixedMeasurer map[string]float64

func (m fixedMeasurer) Measure(text string) float64 {
	if w, ok := m[text]; ok {
		return w
	}
	return runeMeasurer(10).Measure(text)
}

// TestComputeBottomCenterWithBackground 800×600、"Hello World"、64px、底部居中、背景开启、padding 40。
func TestComputeBottomCenterWithBackground(t *testing.T) {
	s := DefaultStyle()
	m := fixedMeasurer{"Hello World": 330}

	maxWidth := MaxTextWidth(800, s)
	if maxWidth != 680 {
		t.Fatalf("maxTextWidth = %g, want 680", maxWidth)
	}
	lines := Wrap("Hello World", m, maxWidth)
	if len(lines) != 1 {
		t.Fatalf("expected single line, got %q", lines)
	}

	res := Compute(lines, m, 800, 600, s)
	wantTop := 600 - 64*1.3 - 40
	if !approx(res.TextBlockTop, wantTop) {
		t.Fatalf("textBlockTop = %g, want %g", res.TextBlockTop, wantTop)
	}
	if !approx(res.LineHeight, 83.2) {
		t.Fatalf("lineHeight = %g, want 83.2", res.LineHeight)
	}
	bg := res.Background
	if bg == nil {
		t.Fatalf("background box missing")
	}
	if !approx(bg.Width, 370) {
		t.Fatalf("bgWidth = %g, want 370", bg.Width)
	}
	if !approx(bg.X, (800-370)/2.0) {
		t.Fatalf("background not centered: x=%g", bg.X)
	}
	if !approx(bg.Y, wantTop-20) || !approx(bg.Height, 83.2+40) {
		t.Fatalf("unexpected bg y/height: %+v", *bg)
	}
	if ln := res.Lines[0]; !approx(ln.X, bg.X+(bg.Width-330)/2) || !approx(ln.Y, wantTop) {
		t.Fatalf("unexpected line origin: %+v", ln)
	}
}

func TestComputeRightAlignWithoutBackground(t *testing.T) {
	s := DefaultStyle()
	s.EnableBackground = false
	s.TextAlign = AlignRight
	m := fixedMeasurer{"caption": 120}

	res := Compute([]string{"caption"}, m, 800, 600, s)
	if res.Background != nil {
		t.Fatalf("background must be nil when disabled")
	}
	if got := res.Lines[0].X; !approx(got, 640) {
		t.Fatalf("lineX = %g, want 640", got)
	}
	if res.BgPadding != 0 {
		t.Fatalf("bgPadding = %g, want 0", res.BgPadding)
	}
}

func TestComputeAlignmentWithoutBackground(t *testing.T) {
	s := DefaultStyle()
	s.EnableBackground = false
	m := fixedMeasurer{"x": 100}

	s.TextAlign = AlignLeft
	if got := Compute([]string{"x"}, m, 800, 600, s).Lines[0].X; got != 40 {
		t.Fatalf("left lineX = %g, want 40", got)
	}
	s.TextAlign = AlignCenter
	if got := Compute([]string{"x"}, m, 800, 600, s).Lines[0].X; got != 350 {
		t.Fatalf("center lineX = %g, want 350", got)
	}
}

func TestComputeAlignmentWithBackground(t *testing.T) {
	s := DefaultStyle()
	m := fixedMeasurer{"short": 100, "a much longer line": 300}
	lines := []string{"short", "a much longer line"}

	s.TextAlign = AlignLeft
	res := Compute(lines, m, 800, 600, s)
	if res.Background.X != 40 || res.Background.Width != 340 {
		t.Fatalf("unexpected left box %+v", *res.Background)
	}
	for i, ln := range res.Lines {
		if ln.X != 60 {
			t.Fatalf("left line %d x = %g, want 60", i, ln.X)
		}
	}

	s.TextAlign = AlignRight
	res = Compute(lines, m, 800, 600, s)
	if res.Background.X != 800-340-40 {
		t.Fatalf("unexpected right box %+v", *res.Background)
	}
	if got := res.Lines[0].X; got != 420+340-100-20 {
		t.Fatalf("right line 0 x = %g", got)
	}
	if got := res.Lines[1].X; got != 420+340-300-20 {
		t.Fatalf("right line 1 x = %g", got)
	}
}

func TestComputePositions(t *testing.T) {
	s := DefaultStyle()
	m := runeMeasurer(10)
	lines := []string{"one", "two"}
	total := 2 * 64 * 1.3

	s.Position = PositionTop
	if got := Compute(lines, m, 800, 600, s).TextBlockTop; got != 40 {
		t.Fatalf("top = %g, want 40", got)
	}
	s.Position = PositionCenter
	if got := Compute(lines, m, 800, 600, s).TextBlockTop; !approx(got, (600-total)/2) {
		t.Fatalf("center = %g, want %g", got, (600-total)/2)
	}
	s.Position = PositionBottom
	if got := Compute(lines, m, 800, 600, s).TextBlockTop; !approx(got, 600-total-40) {
		t.Fatalf("bottom = %g, want %g", got, 600-total-40)
	}
}

func TestComputeTallTextOverflows(t *testing.T) {
	s := DefaultStyle()
	lines := make([]string, 10) // 10 × 83.2 = 832 > 300
	for i := range lines {
		lines[i] = "line"
	}

	s.Position = PositionCenter
	res := Compute(lines, runeMeasurer(10), 400, 300, s)
	if res.TextBlockTop >= 0 {
		t.Fatalf("center position should go negative for tall text, got %g", res.TextBlockTop)
	}

	s.Position = PositionBottom
	res = Compute(lines, runeMeasurer(10), 400, 300, s)
	if res.TextBlockTop != 40 {
		t.Fatalf("bottom position should clamp to padding, got %g", res.TextBlockTop)
	}
	// 面板比图片高：向上拉到 height-bgHeight，可为负
	if want := 300 - (832 + 40.0); !approx(res.Background.Y, want) {
		t.Fatalf("bgY = %g, want %g", res.Background.Y, want)
	}
}

func TestComputePanelPulledUpFromBottom(t *testing.T) {
	s := DefaultStyle()
	s.Padding = 0
	res := Compute([]string{"x"}, runeMeasurer(10), 400, 300, s)
	// top = 300 - 83.2；bgY = top - 20，但不能超过 300 - (83.2 + 40)
	if want := 300 - (83.2 + 40); !approx(res.Background.Y, want) {
		t.Fatalf("bgY = %g, want %g", res.Background.Y, want)
	}
}

func TestComputeEmptyLines(t *testing.T) {
	res := Compute(nil, runeMeasurer(10), 800, 600, DefaultStyle())
	if len(res.Lines) != 0 || res.TotalTextHeight != 0 || res.MaxLineWidth != 0 {
		t.Fatalf("unexpected result for empty input: %+v", res)
	}
	if res.Background != nil {
		t.Fatalf("expected no panel without lines, got %+v", res.Background)
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	s := DefaultStyle()
	lines := Wrap("the quick brown fox jumps over the lazy dog", runeMeasurer(23), MaxTextWidth(500, s))
	a := Compute(lines, runeMeasurer(23), 500, 400, s)
	b := Compute(lines, runeMeasurer(23), 500, 400, s)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("Compute is not deterministic:\n%+v\n%+v", a, b)
	}
}

// TestComputeBackgroundContainment 随机样式下背景面板始终水平位于图片内部，居中时每行满足对称性。
func TestComputeBackgroundContainment(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	aligns := []Align{AlignLeft, AlignCenter, AlignRight}
	positions := []Position{PositionTop, PositionCenter, PositionBottom}
	words := []string{"Hello", "World", "İĞÜŞÇÖ", "🎉", "overlay", "caption", "x"}

	for iter := 0; iter < 300; iter++ {
		s := DefaultStyle()
		s.TextAlign = aligns[rng.Intn(len(aligns))]
		s.Position = positions[rng.Intn(len(positions))]
		s.Padding = float64(rng.Intn(120))
		s.FontSize = float64(8 + rng.Intn(90))
		width := 100 + rng.Intn(1200)
		height := 100 + rng.Intn(900)
		m := runeMeasurer(s.FontSize * 0.6)

		text := ""
		for n := 1 + rng.Intn(25); n > 0; n-- {
			text += words[rng.Intn(len(words))] + " "
		}
		lines := Wrap(text, m, MaxTextWidth(width, s))
		res := Compute(lines, m, width, height, s)
		bg := res.Background
		if len(lines) == 0 {
			t.Fatalf("iter %d: non-empty text %q produced no lines", iter, text)
		}
		if bg == nil {
			t.Fatalf("iter %d: background missing", iter)
		}
		if bg.X < 0 || bg.X+bg.Width > float64(width)+eps {
			t.Fatalf("iter %d: background escapes image: %+v width=%d", iter, *bg, width)
		}
		if s.TextAlign != AlignCenter {
			continue
		}
		for i, ln := range res.Lines {
			if d := math.Abs((ln.X - bg.X) - (bg.Width-ln.Width)/2); d > 1 {
				t.Fatalf("iter %d line %d not centered in panel (diff %g)", iter, i, d)
			}
		}
	}
}
