package domain

import (
	"encoding/binary"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/ORDEP81/ticketsight/internal/domtree"
)

// Fingerprint hashes the user-meaningful content of a ticket subtree:
// element structure, input values, toggle states and visible text. Styling
// and layout churn that does not change any of those leaves the fingerprint
// untouched.
func Fingerprint(root *domtree.Node) uint64 {
	h := xxhash.New()
	var depthBuf [4]byte

	depth := 0
	var visit func(n *domtree.Node, depth int)
	visit = func(n *domtree.Node, depth int) {
		binary.LittleEndian.PutUint32(depthBuf[:], uint32(depth))
		h.Write(depthBuf[:])

		if n.Type == domtree.TextNode {
			h.WriteString("#text\x00")
			h.WriteString(n.Data)
			h.WriteString("\x00")
			return
		}

		h.WriteString(n.Tag)
		h.WriteString("\x00")
		for _, key := range []string{"value", "checked", "aria-pressed", "aria-selected", "aria-checked", "disabled"} {
			if v, ok := n.Attr(key); ok {
				h.WriteString(key)
				h.WriteString("=")
				h.WriteString(v)
				h.WriteString("\x00")
			}
		}
		for _, c := range n.Children() {
			visit(c, depth+1)
		}
	}
	visit(root, depth)
	return h.Sum64()
}

// FingerprintString renders a fingerprint for logging.
func FingerprintString(fp uint64) string {
	return strconv.FormatUint(fp, 16)
}
