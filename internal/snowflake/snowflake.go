package snowflake

import (
	"fmt"
	"sync"
	"time"
)

// Remote message ids are snowflakes: 42 bits of milliseconds since the
// service epoch, 10 bits of worker id, 12 bits of increment. The same layout
// is used for locally generated ids so everything stays totally ordered.

const (
	// 2015-01-01T00:00:00Z in unix milliseconds
	epoch int64 = 1420070400000

	timestampPos    = 22
	workerLength    = 10
	workerPos       = 12
	incrementLength = 12

	maxWorkerValue    = (1 << workerLength) - 1
	maxIncrementValue = (1 << incrementLength) - 1
)

type Snowflake struct {
	Timestamp int64
	WorkerID  int64
	Increment int64
}

var (
	lastIncrement, lastTimestamp int64
	mutex                        sync.Mutex

	workerID    int64 = 0
	hasWorkerID       = false
)

func Setup(id int64) error {
	if id > maxWorkerValue {
		return fmt.Errorf("worker ID value exceeds maximum value of [%d]", maxWorkerValue)
	} else if !hasWorkerID {
		workerID = id
		hasWorkerID = true
		return nil
	}

	return fmt.Errorf("worker ID for snowflake generator has been already set")
}

func Generate() (uint64, error) {
	mutex.Lock()
	defer mutex.Unlock()

	timestamp := time.Now().UnixMilli() - epoch
	if timestamp == lastTimestamp {
		lastIncrement += 1
		if lastIncrement > maxIncrementValue {
			return 0, fmt.Errorf("increment overflow after increment reached %d", lastIncrement)
		}
	} else {
		lastIncrement = 0
		lastTimestamp = timestamp
	}

	return uint64(timestamp<<timestampPos | workerID<<workerPos | lastIncrement), nil
}

func Extract(snowflakeId uint64) Snowflake {
	return Snowflake{
		Timestamp: int64(snowflakeId>>timestampPos) + epoch,
		WorkerID:  int64(snowflakeId>>workerPos) & maxWorkerValue,
		Increment: int64(snowflakeId) & maxIncrementValue,
	}
}

// ExtractTime recovers the creation time embedded in an id. Used as the
// sent-time fallback for wire messages whose timestamp field is missing or
// unparsable.
func ExtractTime(snowflakeId uint64) time.Time {
	return time.UnixMilli(Extract(snowflakeId).Timestamp).UTC()
}
