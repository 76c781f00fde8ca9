// Package carousel implements the looping-scroll controller behind the
// horizontally scrolling media rows. The view renders the item list three
// times back to back; keeping the viewport inside the middle copy makes the
// row appear to loop endlessly in both directions.
package carousel

import "cinescope/models"

const (
	// Safe-zone thresholds as fractions of one third of the scroll width.
	// Leaving the zone triggers an instant re-projection into the middle
	// copy before the seam between two copies can become visible.
	lowerThreshold = 0.2
	upperThreshold = 1.8

	// Fallbacks matching the rendered defaults when the view has not
	// measured a card yet.
	fallbackCardWidth = 200
	fallbackGap       = 16
)

// Metrics describes the rendered geometry the view reports back.
type Metrics struct {
	// ScrollWidth is the total scrollable width of the tripled row.
	ScrollWidth float64
	// CardWidth is the rendered width of one media card.
	CardWidth float64
	// Gap is the spacing between adjacent cards.
	Gap float64
}

// Controller tracks the scroll state of one carousel row. It is a plain
// state machine (idle ⇄ adjusting); the view feeds it scroll events and
// applies the offsets it returns. Instant repositioning suppresses nested
// threshold checks until the view confirms the jump painted via Settle.
type Controller struct {
	count     int
	metrics   Metrics
	offset    float64
	adjusting bool
}

// New returns an empty controller; Populate it before feeding scroll events.
func New() *Controller {
	return &Controller{}
}

// Triple returns the display sequence: the source list concatenated three
// times, so the middle copy always has a full buffer copy on each side.
// An empty or nil list yields nil: nothing to render, no scroll math.
func Triple(items []models.MediaItem) []models.MediaItem {
	if len(items) == 0 {
		return nil
	}
	tripled := make([]models.MediaItem, 0, len(items)*3)
	tripled = append(tripled, items...)
	tripled = append(tripled, items...)
	tripled = append(tripled, items...)
	return tripled
}

// Populate resets the controller for a freshly rendered list and returns the
// instant centering offset: the start of the middle copy, one third of the
// scroll width. ok is false for an empty list or unmeasured row, in which
// case no scroll math applies. The centering jump is instant; call Settle
// once it has painted.
func (c *Controller) Populate(count int, m Metrics) (offset float64, ok bool) {
	if count <= 0 || m.ScrollWidth <= 0 {
		c.count = 0
		c.offset = 0
		c.adjusting = false
		return 0, false
	}

	c.count = count
	c.metrics = m
	c.offset = m.ScrollWidth / 3
	c.adjusting = true
	return c.offset, true
}

// HandleScroll ingests a user-driven scroll position. When the offset has
// drifted out of the middle copy's safe zone it returns the re-projected
// offset and jumped=true; the view must apply it instantly (no animation)
// and call Settle on the next paint. While a jump is pending, nested
// threshold checks are suppressed.
func (c *Controller) HandleScroll(offset float64) (float64, bool) {
	if c.count == 0 {
		return offset, false
	}
	if c.adjusting {
		c.offset = offset
		return offset, false
	}

	third := c.metrics.ScrollWidth / 3
	switch {
	case offset < third*lowerThreshold:
		c.offset = offset + third
		c.adjusting = true
		return c.offset, true
	case offset > third*upperThreshold:
		c.offset = offset - third
		c.adjusting = true
		return c.offset, true
	default:
		c.offset = offset
		return offset, false
	}
}

// Settle marks the pending instant jump as painted, re-enabling threshold
// handling. Calling it while idle is harmless.
func (c *Controller) Settle() {
	c.adjusting = false
}

// AdvanceBy returns the relative scroll delta for advancing n cards
// (negative n scrolls backwards). Unlike repositioning jumps the view
// animates this smoothly. Zero for an unpopulated controller.
func (c *Controller) AdvanceBy(n int) float64 {
	if c.count == 0 {
		return 0
	}

	cardWidth := c.metrics.CardWidth
	if cardWidth <= 0 {
		cardWidth = fallbackCardWidth
	}
	gap := c.metrics.Gap
	if gap <= 0 {
		gap = fallbackGap
	}
	return float64(n) * (cardWidth + gap)
}

// Offset reports the controller's view of the current scroll position.
func (c *Controller) Offset() float64 { return c.offset }

// Adjusting reports whether an instant jump is awaiting Settle.
func (c *Controller) Adjusting() bool { return c.adjusting }
