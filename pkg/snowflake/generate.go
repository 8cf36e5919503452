package snowflake

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init seeds the process-wide generator. Each binary (server, scheduler,
// worker) must run with a distinct machine id so ids never collide.
func Init(machineID, dataCenterID int64) error {
	var initErr error

	once.Do(func() {
		if machineID < 0 || machineID > 31 {
			initErr = fmt.Errorf("snowflake machine id %d out of range 0-31", machineID)
			return
		}
		if dataCenterID < 0 || dataCenterID > 31 {
			initErr = fmt.Errorf("snowflake datacenter id %d out of range 0-31", dataCenterID)
			return
		}

		n, err := snowflake.NewNode(dataCenterID<<5 | machineID)
		if err != nil {
			initErr = err
			return
		}
		node = n
	})

	return initErr
}

// NextID mints the next public identifier.
func NextID() (int64, error) {
	if node == nil {
		return 0, fmt.Errorf("snowflake generator is not initialized")
	}
	return node.Generate().Int64(), nil
}
