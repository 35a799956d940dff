package util

import (
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// GetUUID returns a random uuid string, used as the batch run id.
func GetUUID() string {
	return uuid.New().String()
}

// NotifyOnPanic logs and re-raises a panic with the task tag attached, so a
// crashing batch job always leaves an attributable trace. Use as
// defer util.NotifyOnPanic(taskID, env).
func NotifyOnPanic(taskID, env string) {
	if r := recover(); r != nil {
		log.WithFields(log.Fields{"task": taskID, "env": env,
			"panic": r}).Error("Task panicked.")
		panic(r)
	}
}
