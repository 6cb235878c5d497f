package webclient

import "sort"

// headerNode is one "Name: value" line in a headerList.
type headerNode struct {
	line string
	next *headerNode
}

// headerList is an append-only singly linked list of request header lines.
// One list is built per request, attached to the handle, and released before
// the request routine returns — on every exit path.
type headerList struct {
	head     *headerNode
	tail     *headerNode
	released bool
}

// newHeaderList serializes headers into a list, in sorted key order so the
// wire form is deterministic.
func newHeaderList(headers map[string]string) *headerList {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	l := &headerList{}
	for _, k := range keys {
		l.append(k + ": " + headers[k])
	}
	return l
}

func (l *headerList) append(line string) {
	n := &headerNode{line: line}
	if l.tail == nil {
		l.head = n
	} else {
		l.tail.next = n
	}
	l.tail = n
}

// lines walks the list in insertion order.
func (l *headerList) lines() []string {
	var out []string
	for n := l.head; n != nil; n = n.next {
		out = append(out, n.line)
	}
	return out
}

// release drops the list. Safe to call more than once.
func (l *headerList) release() {
	l.head = nil
	l.tail = nil
	l.released = true
}
