package artifact

import (
	"encoding/hex"
	"io"
	"os"

	"github.com/zeebo/blake3"

	"github.com/sieve4/r4sieve/internal/coreerr"
)

// HashFile returns the hex-encoded blake3 digest of the file at path,
// streaming the file rather than reading it into memory at once (the
// clock pattern table alone is ~30 MiB).
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", coreerr.IO("HashFile", err)
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", coreerr.IO("HashFile", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
