package email

const (
	subjectQuoteReceivedFmt       = "New quote for %s"
	subjectQuoteAcceptedFmt       = "Your quote for %s was accepted"
	subjectQuoteDeclinedFmt       = "Your quote for %s was declined"
	subjectQuoteExpiredFmt        = "Your quote for %s has expired"
	subjectCaseAcceptedFmt        = "A contractor picked up %s"
	subjectJobConfirmedFmt        = "Work scheduled for %s"
	subjectCounterProposalFmt     = "Counter-proposal on your quote for %s"
	subjectAppointmentReminderFmt = "Reminder: %s"
)
