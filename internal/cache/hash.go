package cache

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/xxh3"
)

// hashSalt is bumped whenever processing output changes.
const hashSalt = "tidylist/v1\x00"

func Hash(content string) string {
	sum := xxh3.HashString128(hashSalt + content).Bytes()
	return hex.EncodeToString(sum[:])
}

func HashLines(lines []string) string {
	return Hash(strings.Join(lines, "\n"))
}
