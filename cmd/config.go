package cmd

import "time"

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// Airline gateway simulation
	IssueSuccessPercent int
	RetrySuccessPercent int
	AirlineMinDelay     time.Duration
	AirlineMaxDelay     time.Duration

	// Payment timeout reaper
	PaymentGracePeriod time.Duration
	ReaperSchedule     string
	LockMaxHold        time.Duration
	LockMinHold        time.Duration
}
