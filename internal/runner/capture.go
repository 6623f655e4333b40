package runner

// lineCapture keeps whole lines up to limit bytes (newlines included) and
// silently drops everything after the first line that does not fit.
type lineCapture struct {
	limit     int
	size      int
	lines     []string
	truncated bool
}

func newLineCapture(limit int) *lineCapture {
	return &lineCapture{limit: limit}
}

func (c *lineCapture) add(line string) {
	if c.truncated {
		return
	}
	n := len(line) + 1
	if c.size+n > c.limit {
		c.truncated = c.limit > 0
		return
	}
	c.size += n
	c.lines = append(c.lines, line)
}
