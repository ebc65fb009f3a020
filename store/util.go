package store

// reservedRootKey is where the current trie root hash is stored
const reservedRootKey = "__root__"

// PrefixEndBytes() returns the key that immediately follows the last possible key sharing `prefix`,
// used as the exclusive upper bound for a lexicographically ordered range scan
func PrefixEndBytes(prefix []byte) []byte {
	if len(prefix) == 0 {
		return []byte{byte(255)}
	}
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for {
		if end[len(end)-1] != byte(255) {
			end[len(end)-1]++
			break
		} else {
			end = end[:len(end)-1]
			if len(end) == 0 {
				end = nil
				break
			}
		}
	}
	return end
}
