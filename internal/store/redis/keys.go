package redis

// KeyPrefixSnapshot is the prefix for shared upstream snapshot keys.
const KeyPrefixSnapshot = "edge:snapshot:"

// SnapshotKey returns the Redis key for an upstream kind.
func SnapshotKey(kind string) string {
	return KeyPrefixSnapshot + kind
}
