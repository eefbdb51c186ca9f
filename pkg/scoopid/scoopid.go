package scoopid

import (
	"strconv"
	"sync"
	"time"
)

// ScoopID Format:
// Timestamp (41-bits)
// Node ID (11-bits)
// Increment (11-bits)

type ScoopID = int64

const JapapEpoch int64 = 1704067200000 // 2024-01-01 12am GMT

const (
	TimestampBits = 41
	TimestampMask = (1 << TimestampBits) - 1

	NodeIdBits = 11
	NodeIdMask = (1 << NodeIdBits) - 1

	IncrementBits = 11
	IncrementMask = (1 << IncrementBits) - 1
)

var nodeId int64

var idIncrementLock = sync.Mutex{}
var idIncrementTs int64 = 0
var idIncrement int64 = 0

func Init(rawNodeId string) error {
	if rawNodeId == "" {
		nodeId = 0
		return nil
	}
	id, err := strconv.ParseInt(rawNodeId, 10, 64)
	if err != nil {
		return err
	}
	if id < 0 || id > NodeIdMask {
		return ErrInvalidNodeId
	}
	nodeId = id
	return nil
}

func GenId() ScoopID {
	idIncrementLock.Lock()
	defer idIncrementLock.Unlock()

	// Get timestamp
	ts := time.Now().UnixMilli()

	// Get increment
	if idIncrementTs != ts {
		idIncrementTs = ts
		idIncrement = 0
	} else if idIncrement >= IncrementMask {
		for ts <= idIncrementTs {
			ts = time.Now().UnixMilli()
		}
		idIncrementTs = ts
		idIncrement = 0
	} else {
		idIncrement += 1
	}

	return compose(ts, nodeId, idIncrement)
}

// WARNING: This may result in conflicts because it generates the 1st possible
// ID for the given timestamp.
func GenIdForTs(ts int64) ScoopID {
	return compose(ts, 0, 0)
}

func compose(ts int64, node int64, increment int64) ScoopID {
	id := ((ts - JapapEpoch) & TimestampMask) << (NodeIdBits + IncrementBits)
	id |= (node & NodeIdMask) << IncrementBits
	id |= increment & IncrementMask
	return id
}

type Parts struct {
	Timestamp int64
	NodeId    int64
	Increment int64
}

func Extract(id ScoopID) Parts {
	return Parts{
		Timestamp: ((id >> (NodeIdBits + IncrementBits)) & TimestampMask) + JapapEpoch,
		NodeId:    (id >> IncrementBits) & NodeIdMask,
		Increment: id & IncrementMask,
	}
}

func Parse(s string) (ScoopID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidId
	}
	return id, nil
}
