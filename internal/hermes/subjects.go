package hermes

const (
	StreamName   = "QUOTES_EVENTS"
	StreamMaxAge = "168h" // 7 days

	streamSubjects = "quotes.>"
)

func SubjectSessionCreated(sessionID string) string  { return "quotes.session." + sessionID + ".created" }
func SubjectSessionUpdated(sessionID string) string  { return "quotes.session." + sessionID + ".updated" }
func SubjectSessionDeleted(sessionID string) string  { return "quotes.session." + sessionID + ".deleted" }
func SubjectScenarioChanged(sessionID string) string { return "quotes.session." + sessionID + ".scenario" }
func SubjectWeightsApplied(sessionID string) string  { return "quotes.session." + sessionID + ".weights" }

// Recommendation lifecycle subjects
func SubjectRecommendationRequested(sessionID string) string {
	return "quotes.recommendation." + sessionID + ".requested"
}
func SubjectRecommendationCompleted(sessionID string) string {
	return "quotes.recommendation." + sessionID + ".completed"
}
func SubjectRecommendationFailed(sessionID string) string {
	return "quotes.recommendation." + sessionID + ".failed"
}
func SubjectRecommendationDiscarded(sessionID string) string {
	return "quotes.recommendation." + sessionID + ".discarded"
}
