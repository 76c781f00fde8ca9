package carousel_test

import (
	"testing"

	"cinescope/internal/carousel"
	"cinescope/models"
)

func TestTripleConcatenatesThreeCopies(t *testing.T) {
	items := []models.MediaItem{{ID: 1}, {ID: 2}, {ID: 3}}

	tripled := carousel.Triple(items)
	if len(tripled) != 9 {
		t.Fatalf("expected 9 rendered items, got %d", len(tripled))
	}
	for i, item := range tripled {
		if want := items[i%3].ID; item.ID != want {
			t.Fatalf("position %d: expected id %d, got %d", i, want, item.ID)
		}
	}
}

func TestTripleEmptyRendersNothing(t *testing.T) {
	if got := carousel.Triple(nil); got != nil {
		t.Fatalf("expected nil for empty source, got %v", got)
	}
	if got := carousel.Triple([]models.MediaItem{}); got != nil {
		t.Fatalf("expected nil for empty source, got %v", got)
	}
}

func TestPopulateCentersOnMiddleCopy(t *testing.T) {
	c := carousel.New()

	offset, ok := c.Populate(3, carousel.Metrics{ScrollWidth: 3000})
	if !ok {
		t.Fatalf("expected populate to succeed")
	}
	if offset != 1000 {
		t.Fatalf("expected initial offset at one third (1000), got %v", offset)
	}
	if !c.Adjusting() {
		t.Fatalf("expected instant centering to await Settle")
	}
}

func TestPopulateEmptyListSkipsScrollMath(t *testing.T) {
	c := carousel.New()

	if _, ok := c.Populate(0, carousel.Metrics{ScrollWidth: 3000}); ok {
		t.Fatalf("expected populate to report nothing to render")
	}
	if offset, jumped := c.HandleScroll(50); jumped {
		t.Fatalf("expected no jump for empty controller, got offset %v", offset)
	}
	if delta := c.AdvanceBy(1); delta != 0 {
		t.Fatalf("expected zero advance for empty controller, got %v", delta)
	}
}

func TestHandleScrollReprojectsBelowLowerThreshold(t *testing.T) {
	c := carousel.New()
	c.Populate(3, carousel.Metrics{ScrollWidth: 3000})
	c.Settle()

	// third = 1000; 0.1*third is out of the safe zone on the left.
	offset, jumped := c.HandleScroll(100)
	if !jumped {
		t.Fatalf("expected an instant jump at 0.1*third")
	}
	if offset != 1100 {
		t.Fatalf("expected re-projection to 0.1*third + third (1100), got %v", offset)
	}
}

func TestHandleScrollReprojectsAboveUpperThreshold(t *testing.T) {
	c := carousel.New()
	c.Populate(3, carousel.Metrics{ScrollWidth: 3000})
	c.Settle()

	offset, jumped := c.HandleScroll(1900)
	if !jumped {
		t.Fatalf("expected an instant jump at 1.9*third")
	}
	if offset != 900 {
		t.Fatalf("expected re-projection to 1.9*third - third (900), got %v", offset)
	}
}

func TestHandleScrollStaysIdleInsideSafeZone(t *testing.T) {
	c := carousel.New()
	c.Populate(3, carousel.Metrics{ScrollWidth: 3000})
	c.Settle()

	offset, jumped := c.HandleScroll(1500)
	if jumped {
		t.Fatalf("expected no jump inside the safe zone")
	}
	if offset != 1500 {
		t.Fatalf("expected offset passthrough, got %v", offset)
	}
}

func TestAdjustingSuppressesNestedJumps(t *testing.T) {
	c := carousel.New()
	c.Populate(3, carousel.Metrics{ScrollWidth: 3000})
	c.Settle()

	if _, jumped := c.HandleScroll(100); !jumped {
		t.Fatalf("expected first scroll to jump")
	}

	// The jump has not painted yet; further events must not re-adjust.
	if _, jumped := c.HandleScroll(120); jumped {
		t.Fatalf("expected nested threshold checks to be suppressed")
	}

	c.Settle()
	if _, jumped := c.HandleScroll(120); !jumped {
		t.Fatalf("expected threshold checks to resume after Settle")
	}
}

func TestAdvanceByUsesCardWidthPlusGap(t *testing.T) {
	c := carousel.New()
	c.Populate(3, carousel.Metrics{ScrollWidth: 3000, CardWidth: 250, Gap: 20})
	c.Settle()

	if delta := c.AdvanceBy(2); delta != 540 {
		t.Fatalf("expected 2*(250+20)=540, got %v", delta)
	}
	if delta := c.AdvanceBy(-1); delta != -270 {
		t.Fatalf("expected -270 scrolling backwards, got %v", delta)
	}
}

func TestAdvanceByFallsBackToRenderedDefaults(t *testing.T) {
	c := carousel.New()
	c.Populate(3, carousel.Metrics{ScrollWidth: 3000})
	c.Settle()

	// Unmeasured card: 200 wide with a 16 gap.
	if delta := c.AdvanceBy(1); delta != 216 {
		t.Fatalf("expected fallback advance 216, got %v", delta)
	}
}
