// Package schedule decides the order in which page resources are
// loaded: radiating outward from the focus page so the pages the
// reader is most likely to see next are requested first.
package schedule

// Order returns a page-visit order for a document of total pages,
// radiating outward from focus. The sequence starts at focus, then for
// each growing offset emits the next (higher) neighbor before the
// previous (lower) one, skipping indices outside [1, total]. Every page
// appears exactly once, so edge pages degrade to a single-direction
// walk.
//
// Order is pure: callers re-run it on every focus change and feed the
// result to the resource cache without waiting on earlier requests.
func Order(focus, total int) []int {
	if total <= 0 {
		return nil
	}
	if focus < 1 {
		focus = 1
	} else if focus > total {
		focus = total
	}

	out := make([]int, 0, total)
	out = append(out, focus)

	for offset := 1; len(out) < total; offset++ {
		if next := focus + offset; next <= total {
			out = append(out, next)
		}
		if prev := focus - offset; prev >= 1 {
			out = append(out, prev)
		}
	}
	return out
}
