// Package id generates time-ordered int64 entity ids.
package id

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Generator hands out unique ids that increase with generation order.
type Generator interface {
	New() int64
}

// Snowflake generates ids with a snowflake node.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake creates a generator for nodeID (0-1023).
func NewSnowflake(nodeID int64) (*Snowflake, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &Snowflake{node: node}, nil
}

func (s *Snowflake) New() int64 {
	return s.node.Generate().Int64()
}
