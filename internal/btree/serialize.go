package btree

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Serialize writes a pre-order dump of the tree: per node a leaf flag,
// a key count and the keys (encoded by enc), then for internal nodes a
// child count followed by each child. Key encoding is supplied by the
// caller so the tree stays agnostic of its key type.
func (tr *Tree[K]) Serialize(w io.Writer, enc func(io.Writer, K) error) error {
	return tr.root.serialize(w, enc)
}

func (n *node[K]) serialize(w io.Writer, enc func(io.Writer, K) error) error {
	var leaf byte
	if n.leaf {
		leaf = 1
	}
	if _, err := w.Write([]byte{leaf}); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(n.keys))); err != nil {
		return err
	}
	for _, k := range n.keys {
		if err := enc(w, k); err != nil {
			return err
		}
	}
	if n.leaf {
		return nil
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(n.children))); err != nil {
		return err
	}
	for _, c := range n.children {
		if err := c.serialize(w, enc); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize reads a tree written by Serialize. The stream is trusted
// apart from basic node-size sanity.
func Deserialize[K any](r io.Reader, degree int, cmp func(a, b K) int, dec func(io.Reader) (K, error)) (*Tree[K], error) {
	tr, err := New[K](degree, cmp)
	if err != nil {
		return nil, err
	}
	root, err := deserializeNode(r, degree, dec)
	if err != nil {
		return nil, err
	}
	tr.root = root
	return tr, nil
}

func deserializeNode[K any](r io.Reader, degree int, dec func(io.Reader) (K, error)) (*node[K], error) {
	var leaf [1]byte
	if _, err := io.ReadFull(r, leaf[:]); err != nil {
		return nil, err
	}
	n := &node[K]{leaf: leaf[0] != 0}

	var keyCount uint64
	if err := binary.Read(r, binary.LittleEndian, &keyCount); err != nil {
		return nil, err
	}
	if keyCount > uint64(2*degree-1) {
		return nil, fmt.Errorf("btree: node key count %d exceeds maximum %d", keyCount, 2*degree-1)
	}
	n.keys = make([]K, keyCount)
	for i := range n.keys {
		k, err := dec(r)
		if err != nil {
			return nil, err
		}
		n.keys[i] = k
	}
	if n.leaf {
		return n, nil
	}

	var childCount uint64
	if err := binary.Read(r, binary.LittleEndian, &childCount); err != nil {
		return nil, err
	}
	if childCount != keyCount+1 {
		return nil, fmt.Errorf("btree: internal node with %d keys has %d children", keyCount, childCount)
	}
	n.children = make([]*node[K], childCount)
	for i := range n.children {
		c, err := deserializeNode(r, degree, dec)
		if err != nil {
			return nil, err
		}
		n.children[i] = c
	}
	return n, nil
}
