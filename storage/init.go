package storage

import (
	"OnDuty/storage/database"
	"OnDuty/storage/mq"
	"OnDuty/storage/redis"
)

// Init brings up every external store this service depends on.
func Init() error {
	if err := database.Init(); err != nil {
		return err
	}

	if err := redis.Init(); err != nil {
		return err
	}

	if err := mq.Init(); err != nil {
		return err
	}

	return nil
}
