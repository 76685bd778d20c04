package services

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// TrackTime logs how long funcName ran. Use as: defer TrackTime("Name", time.Now())
func TrackTime(funcName string, start time.Time) {
	elapsed := time.Since(start)
	log.WithField("operation", funcName).Debugf("%s took %d ms", funcName, elapsed.Milliseconds())
}
