package service

import "fmt"

const keyPrefix = "resolve:"

func challengeKey(userID string) string {
	return fmt.Sprintf("%schallenge:%s", keyPrefix, userID)
}

func creditsKey(userID string) string {
	return fmt.Sprintf("%scredits:%s", keyPrefix, userID)
}

func startedKey(userID string) string {
	return fmt.Sprintf("%schallenges_started:%s", keyPrefix, userID)
}

func watchHistoryKey(userID string) string {
	return fmt.Sprintf("%swatch_history:%s", keyPrefix, userID)
}

func settingsKey(userID string) string {
	return fmt.Sprintf("%ssettings:%s", keyPrefix, userID)
}

func devicesKey(userID string) string {
	return fmt.Sprintf("%sdevices:%s", keyPrefix, userID)
}

func reminderFiredKey(userID, name string, day string) string {
	return fmt.Sprintf("%sreminder_fired:%s:%s:%s", keyPrefix, userID, name, day)
}

// EventsChannel is the pub/sub channel carrying a user's domain events.
func EventsChannel(userID string) string {
	return fmt.Sprintf("%sevents:%s", keyPrefix, userID)
}
