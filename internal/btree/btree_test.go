package btree

import (
	"bytes"
	"encoding/binary"
	"io"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func newIntTree(t *testing.T, degree int) *Tree[int] {
	t.Helper()
	tr, err := New[int](degree, cmpInt)
	require.NoError(t, err)
	return tr
}

// checkInvariants walks the tree verifying the structural rules: key
// bounds on every non-root node, child counts, sorted keys, and equal
// leaf depth.
func checkInvariants(t *testing.T, tr *Tree[int]) {
	t.Helper()
	leafDepth := -1
	var walk func(n *node[int], depth int, root bool)
	walk = func(n *node[int], depth int, root bool) {
		if !root {
			require.GreaterOrEqual(t, len(n.keys), tr.t-1, "node underflow")
		}
		require.LessOrEqual(t, len(n.keys), 2*tr.t-1, "node overflow")
		require.True(t, sort.SliceIsSorted(n.keys, func(i, j int) bool {
			return n.keys[i] < n.keys[j]
		}), "keys out of order")

		if n.leaf {
			require.Empty(t, n.children)
			if leafDepth == -1 {
				leafDepth = depth
			}
			require.Equal(t, leafDepth, depth, "leaves at unequal depth")
			return
		}
		require.Len(t, n.children, len(n.keys)+1)
		for _, c := range n.children {
			walk(c, depth+1, false)
		}
	}
	walk(tr.root, 0, true)

	keys := tr.Keys()
	require.True(t, sort.IntsAreSorted(keys), "in-order traversal not sorted")
}

func TestNewRejectsSmallDegree(t *testing.T) {
	_, err := New[int](1, cmpInt)
	assert.Error(t, err)
	_, err = New[int](2, cmpInt)
	assert.NoError(t, err)
}

func TestInsertSearchRoundTrip(t *testing.T) {
	tr := newIntTree(t, 3)
	for i := 0; i < 200; i++ {
		tr.Insert(i * 7 % 199)
		assert.True(t, tr.Search(i*7%199))
	}
	checkInvariants(t, tr)
	assert.False(t, tr.Search(-1))
	assert.False(t, tr.Search(1000))
}

func TestInsertSplitsRoot(t *testing.T) {
	tr := newIntTree(t, 2)
	// 2t-1 = 3 keys fill the root; the fourth forces a split.
	for _, k := range []int{1, 2, 3, 4} {
		tr.Insert(k)
	}
	assert.False(t, tr.root.leaf)
	checkInvariants(t, tr)
	assert.Equal(t, []int{1, 2, 3, 4}, tr.Keys())
}

func TestRemoveLeafAndInternal(t *testing.T) {
	tr := newIntTree(t, 3)
	for i := 1; i <= 50; i++ {
		tr.Insert(i)
	}
	for _, k := range []int{25, 1, 50, 13, 37} {
		tr.Remove(k)
		assert.False(t, tr.Search(k), "key %d still present", k)
		checkInvariants(t, tr)
	}
	assert.Equal(t, 45, tr.Len())
}

func TestRemoveIsIdempotent(t *testing.T) {
	tr := newIntTree(t, 3)
	for i := 0; i < 20; i++ {
		tr.Insert(i)
	}
	tr.Remove(10)
	before := tr.Keys()
	tr.Remove(10)
	assert.Equal(t, before, tr.Keys())
	checkInvariants(t, tr)
}

func TestRemoveEverything(t *testing.T) {
	tr := newIntTree(t, 2)
	const n = 64
	perm := rand.New(rand.NewSource(1)).Perm(n)
	for _, k := range perm {
		tr.Insert(k)
	}
	for _, k := range perm {
		tr.Remove(k)
		checkInvariants(t, tr)
	}
	assert.Equal(t, 0, tr.Len())
	assert.True(t, tr.root.leaf)
}

func TestRandomInsertRemoveMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tr := newIntTree(t, 3)
	ref := map[int]int{}

	for i := 0; i < 2000; i++ {
		k := rng.Intn(100)
		if rng.Intn(2) == 0 {
			tr.Insert(k)
			ref[k]++
		} else {
			tr.Remove(k)
			if ref[k] > 0 {
				ref[k]--
			}
		}
	}
	checkInvariants(t, tr)

	var want []int
	for k, c := range ref {
		for j := 0; j < c; j++ {
			want = append(want, k)
		}
	}
	sort.Ints(want)
	if want == nil {
		want = []int{}
	}
	got := tr.Keys()
	if got == nil {
		got = []int{}
	}
	assert.Equal(t, want, got)
}

func TestDuplicateKeysAllowed(t *testing.T) {
	tr := newIntTree(t, 3)
	for i := 0; i < 10; i++ {
		tr.Insert(5)
	}
	assert.Equal(t, 10, tr.Len())
	tr.Remove(5)
	assert.Equal(t, 9, tr.Len())
	assert.True(t, tr.Search(5))
	checkInvariants(t, tr)
}

func TestAscendStopsEarly(t *testing.T) {
	tr := newIntTree(t, 2)
	for i := 0; i < 30; i++ {
		tr.Insert(i)
	}
	var seen []int
	tr.Ascend(func(k int) bool {
		seen = append(seen, k)
		return len(seen) < 5
	})
	assert.Equal(t, []int{0, 1, 2, 3, 4}, seen)
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

func encInt(w io.Writer, k int) error {
	return binary.Write(w, binary.LittleEndian, int64(k))
}

func decInt(r io.Reader) (int, error) {
	var v int64
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, err
	}
	return int(v), nil
}

func TestSerializeRoundTrip(t *testing.T) {
	tr := newIntTree(t, 3)
	for i := 0; i < 100; i++ {
		tr.Insert(i * 13 % 101)
	}

	var buf bytes.Buffer
	require.NoError(t, tr.Serialize(&buf, encInt))

	got, err := Deserialize(&buf, 3, cmpInt, decInt)
	require.NoError(t, err)
	assert.Equal(t, tr.Keys(), got.Keys())
	checkInvariants(t, got)

	// The restored tree keeps working.
	got.Insert(500)
	assert.True(t, got.Search(500))
}

func TestSerializeEmptyTree(t *testing.T) {
	tr := newIntTree(t, 3)
	var buf bytes.Buffer
	require.NoError(t, tr.Serialize(&buf, encInt))

	got, err := Deserialize(&buf, 3, cmpInt, decInt)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestDeserializeRejectsOversizedNode(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(1)
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(99)))
	_, err := Deserialize(&buf, 3, cmpInt, decInt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key count")
}

func TestSerializeFormatLayout(t *testing.T) {
	// A fresh leaf root with two keys serializes as: leaf flag, key
	// count, then the keys.
	tr := newIntTree(t, 3)
	tr.Insert(1)
	tr.Insert(2)

	var buf bytes.Buffer
	require.NoError(t, tr.Serialize(&buf, encInt))
	raw := buf.Bytes()
	require.Equal(t, byte(1), raw[0], "leaf flag")
	require.Equal(t, uint64(2), binary.LittleEndian.Uint64(raw[1:9]), "key count")
	assert.Equal(t, uint64(1), binary.LittleEndian.Uint64(raw[9:17]), "first key")
	assert.Equal(t, uint64(2), binary.LittleEndian.Uint64(raw[17:25]), "second key")
}
