package id

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	mu   sync.RWMutex
	node *snowflake.Node
)

// Init sets up the process-wide snowflake node. Only the first successful
// call takes effect; later calls are no-ops.
func Init(nodeID int64) error {
	mu.Lock()
	defer mu.Unlock()
	if node != nil {
		return nil
	}
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return fmt.Errorf("creating snowflake node %d: %w", nodeID, err)
	}
	node = n
	return nil
}

// New returns a time-ordered id. Init must have been called.
func New() int64 {
	mu.RLock()
	defer mu.RUnlock()
	if node == nil {
		panic("id: New called before Init")
	}
	return node.Generate().Int64()
}

// Millis is the Unix millisecond timestamp embedded in a snowflake id.
func Millis(v int64) int64 {
	return snowflake.ID(v).Time()
}
