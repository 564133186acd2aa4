package idhash

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"

	"github.com/mr-tron/base58"
)

// ComputeRunID computes a deterministic run_id for a feature generation run.
// Formula: base58(SHA256(unit|date|target|windows|horizon|input_digest))
// Identical configuration over identical input yields the same run_id.
func ComputeRunID(
	unitCol string,
	dateCol string,
	targetCol string,
	windows []int,
	horizon int,
	inputDigest string,
) string {
	ws := make([]string, len(windows))
	for i, w := range windows {
		ws[i] = strconv.Itoa(w)
	}

	data := fmt.Sprintf("%s|%s|%s|%s|%d|%s",
		unitCol,
		dateCol,
		targetCol,
		strings.Join(ws, ","),
		horizon,
		inputDigest,
	)

	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}
