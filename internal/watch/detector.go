package watch

import (
	"crypto/md5"
	"encoding/hex"
)

// Fingerprint digests content to a fixed 32-character lowercase hex string.
// md5 is for change detection only, not integrity.
func Fingerprint(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Detect fingerprints content and reports whether it differs from the last
// reported fingerprint. An empty lastFingerprint (nothing reported yet) always
// counts as changed. Pure: no I/O, no clock.
func Detect(content, lastFingerprint string) (fingerprint string, changed bool) {
	fingerprint = Fingerprint(content)
	return fingerprint, fingerprint != lastFingerprint
}
