package util

import "github.com/dustin/go-humanize"

// Human formats a byte count with binary units ("1.5 KiB"). Negative counts
// read as zero.
func Human(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
