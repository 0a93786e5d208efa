package ports

// Metrics records service outcomes. Result values are short, stable label
// values such as "success" or "duplicate".
type Metrics interface {
	RegistrationAttempt(result string)
	LoginAttempt(result string)
	SessionResolved(result string)
	DayEntrySaved(payloadBytes int)
}
