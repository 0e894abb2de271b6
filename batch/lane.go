package batch

import "github.com/gogpu/overlay/paint"

// group is a run of same-style primitives inside a lane buffer.
type group struct {
	style paint.StyleKey
	start int
}

// lane is the buffer of one primitive kind. Primitives are appended to a
// single slice; groups record where each style run starts. The last group
// is the open one.
type lane[T any] struct {
	items  []T
	groups []group
}

func (l *lane[T]) reserve(n int) {
	l.items = make([]T, 0, n)
	l.groups = make([]group, 0, 8)
}

// add appends v and reports whether it opened a new group after an
// existing one, i.e. whether a style switch closed the previous group.
func (l *lane[T]) add(v T, style paint.StyleKey) bool {
	n := len(l.groups)
	if n > 0 && l.groups[n-1].style == style {
		l.items = append(l.items, v)
		return false
	}
	l.groups = append(l.groups, group{style: style, start: len(l.items)})
	l.items = append(l.items, v)
	return n > 0
}

// emitClosed calls fn for every group except the open one, then moves the
// open group to the front of the buffer.
func (l *lane[T]) emitClosed(fn func(items []T, style paint.StyleKey)) {
	n := len(l.groups)
	if n < 2 {
		return
	}
	for i := 0; i < n-1; i++ {
		fn(l.items[l.groups[i].start:l.groups[i+1].start], l.groups[i].style)
	}
	open := l.groups[n-1]
	m := copy(l.items, l.items[open.start:])
	l.items = l.items[:m]
	l.groups = append(l.groups[:0], group{style: open.style})
}

// emit calls fn for every group in submission order and empties the lane.
func (l *lane[T]) emit(fn func(items []T, style paint.StyleKey)) {
	for i, g := range l.groups {
		end := len(l.items)
		if i+1 < len(l.groups) {
			end = l.groups[i+1].start
		}
		fn(l.items[g.start:end], g.style)
	}
	l.reset()
}

func (l *lane[T]) size() int {
	return len(l.items)
}

func (l *lane[T]) reset() {
	l.items = l.items[:0]
	l.groups = l.groups[:0]
}
