package mpf

// fruitList is the reference 30-pair vector shared across this package's
// tests. Values are arbitrary but fixed so insertion-order independence can be checked
// by re-inserting the same pairs in a different order and comparing roots.
var fruitList = [][2][]byte{
	{[]byte("apple"), []byte("🍎")},
	{[]byte("apricot"), []byte("🧡")},
	{[]byte("banana"), []byte("🍌")},
	{[]byte("blackberry"), []byte("⚫")},
	{[]byte("blueberry"), []byte("🔵")},
	{[]byte("cantaloupe"), []byte("🧡")},
	{[]byte("cherry"), []byte("🍒")},
	{[]byte("clementine"), []byte("🍊")},
	{[]byte("coconut"), []byte("🥥")},
	{[]byte("cranberry"), []byte("🔴")},
	{[]byte("date"), []byte("🟤")},
	{[]byte("dragonfruit"), []byte("🐉")},
	{[]byte("elderberry"), []byte("🟣")},
	{[]byte("fig"), []byte("🟪")},
	{[]byte("grape"), []byte("🍇")},
	{[]byte("grapefruit"), []byte("🍊")},
	{[]byte("guava"), []byte("🟢")},
	{[]byte("honeydew"), []byte("🍈")},
	{[]byte("kiwi"), []byte("🥝")},
	{[]byte("kumquat"), []byte("🟠")},
	{[]byte("lemon"), []byte("🍋")},
	{[]byte("lime"), []byte("🟢")},
	{[]byte("lychee"), []byte("🌸")},
	{[]byte("mandarin"), []byte("🍊")},
	{[]byte("mango"), []byte("🥭")},
	{[]byte("melon"), []byte("🍈")},
	{[]byte("nectarine"), []byte("🍑")},
	{[]byte("orange"), []byte("🍊")},
	{[]byte("papaya"), []byte("🧡")},
	{[]byte("peach"), []byte("🍑")},
}

// reversed returns a copy of pairs in reverse order, for checking Canonicality under a different
// insertion order.
func reversed(pairs [][2][]byte) [][2][]byte {
	out := make([][2][]byte, len(pairs))
	for i, p := range pairs {
		out[len(pairs)-1-i] = p
	}
	return out
}

// without returns a copy of pairs with the entry matching key removed.
func without(pairs [][2][]byte, key string) [][2][]byte {
	out := make([][2][]byte, 0, len(pairs)-1)
	for _, p := range pairs {
		if string(p[0]) != key {
			out = append(out, p)
		}
	}
	return out
}
