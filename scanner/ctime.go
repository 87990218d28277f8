package scanner

// ctimeHistogram counts how many children of one directory share each
// change time. Package installs and bulk copies touch many siblings at
// once, so a shared ctime marks a file as probably untouched since then.
type ctimeHistogram map[int64]int

func newCtimeHistogram(entries []dirEntry) ctimeHistogram {
	h := make(ctimeHistogram, len(entries))
	for _, e := range entries {
		if e.hasCtime {
			h[e.ctime]++
		}
	}
	return h
}

// Shared reports whether e has the same ctime as at least one sibling.
func (h ctimeHistogram) Shared(e dirEntry) bool {
	return e.hasCtime && h[e.ctime] > 1
}
