package ui

import "sync/atomic"

type Stats struct {
	Fetched atomic.Int64
	Failed  atomic.Int64
	Bytes   atomic.Int64
}
