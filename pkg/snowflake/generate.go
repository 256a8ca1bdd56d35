package snowflake

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once

	errInvalidMachineID    = errors.New("invalid snowflake machine id")
	errInvalidDataCenterID = errors.New("invalid snowflake datacenter id")
	errGeneratorUninitial  = errors.New("snowflake generator is not initialized")
)

// Init datacenterID 和 machineID 都是 0~31，拼成 10 位节点号
func Init(machineID, dataCenterID int64) error {
	var initErr error

	once.Do(func() {
		if machineID < 0 || machineID > 31 {
			initErr = errInvalidMachineID
			return
		}
		if dataCenterID < 0 || dataCenterID > 31 {
			initErr = errInvalidDataCenterID
			return
		}

		var err error
		node, err = snowflake.NewNode((dataCenterID << 5) | machineID)
		if err != nil {
			initErr = err
		}
	})

	return initErr
}

func NextID() (int64, error) {
	if node == nil {
		return 0, errGeneratorUninitial
	}

	return node.Generate().Int64(), nil
}

// MessageID 生成带前缀的消息 ID，用于消费端幂等
func MessageID(prefix string) (string, error) {
	id, err := NextID()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%d", prefix, id), nil
}
