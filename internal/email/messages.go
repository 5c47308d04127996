package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// Message is a fully rendered email ready for the outbox.
type Message struct {
	Subject string
	HTML    string
}

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type quoteReceivedData struct {
	baseEmailData
	LandlordName   string
	CaseTitle      string
	TotalFormatted string
}

type quoteAcceptedData struct {
	baseEmailData
	ContractorName string
	CaseTitle      string
	TotalFormatted string
}

type quoteDeclinedData struct {
	baseEmailData
	ContractorName string
	CaseTitle      string
	Reason         string
}

type quoteExpiredData struct {
	baseEmailData
	ContractorName string
	CaseTitle      string
}

type caseAcceptedData struct {
	baseEmailData
	LandlordName string
	CaseTitle    string
}

type jobConfirmedData struct {
	baseEmailData
	RecipientName string
	CaseTitle     string
	StartDate     string
	EndDate       string
}

type counterProposalData struct {
	baseEmailData
	RecipientName     string
	CaseTitle         string
	HasProposedTotal  bool
	ProposedFormatted string
}

type appointmentReminderData struct {
	baseEmailData
	RecipientName string
	Title         string
	StartDate     string
	StartTime     string
}

// NewQuoteReceivedMessage renders the email a landlord gets when a
// contractor sends a quote for their case.
func NewQuoteReceivedMessage(landlordName, caseTitle string, totalCents int64, approvalURL string) (Message, error) {
	subject := fmt.Sprintf(subjectQuoteReceivedFmt, caseTitle)
	html, err := renderEmailTemplate("quote_received.html", quoteReceivedData{
		baseEmailData: baseEmailData{
			Title:    subject,
			Heading:  "You received a quote",
			CTALabel: "Review quote",
			CTAURL:   approvalURL,
		},
		LandlordName:   landlordName,
		CaseTitle:      caseTitle,
		TotalFormatted: formatCurrencyEUR(totalCents),
	})
	return Message{Subject: subject, HTML: html}, err
}

func NewQuoteAcceptedMessage(contractorName, caseTitle string, totalCents int64) (Message, error) {
	subject := fmt.Sprintf(subjectQuoteAcceptedFmt, caseTitle)
	html, err := renderEmailTemplate("quote_accepted.html", quoteAcceptedData{
		baseEmailData: baseEmailData{
			Title:   subject,
			Heading: "Quote accepted",
		},
		ContractorName: contractorName,
		CaseTitle:      caseTitle,
		TotalFormatted: formatCurrencyEUR(totalCents),
	})
	return Message{Subject: subject, HTML: html}, err
}

func NewQuoteDeclinedMessage(contractorName, caseTitle, reason string) (Message, error) {
	subject := fmt.Sprintf(subjectQuoteDeclinedFmt, caseTitle)
	html, err := renderEmailTemplate("quote_declined.html", quoteDeclinedData{
		baseEmailData: baseEmailData{
			Title:   subject,
			Heading: "Quote declined",
		},
		ContractorName: contractorName,
		CaseTitle:      caseTitle,
		Reason:         reason,
	})
	return Message{Subject: subject, HTML: html}, err
}

func NewQuoteExpiredMessage(contractorName, caseTitle string) (Message, error) {
	subject := fmt.Sprintf(subjectQuoteExpiredFmt, caseTitle)
	html, err := renderEmailTemplate("quote_expired.html", quoteExpiredData{
		baseEmailData: baseEmailData{
			Title:   subject,
			Heading: "Quote expired",
		},
		ContractorName: contractorName,
		CaseTitle:      caseTitle,
	})
	return Message{Subject: subject, HTML: html}, err
}

func NewCaseAcceptedMessage(landlordName, caseTitle string) (Message, error) {
	subject := fmt.Sprintf(subjectCaseAcceptedFmt, caseTitle)
	html, err := renderEmailTemplate("case_accepted.html", caseAcceptedData{
		baseEmailData: baseEmailData{
			Title:   subject,
			Heading: "A contractor accepted your case",
		},
		LandlordName: landlordName,
		CaseTitle:    caseTitle,
	})
	return Message{Subject: subject, HTML: html}, err
}

func NewJobConfirmedMessage(recipientName, caseTitle string, startAt, endAt time.Time) (Message, error) {
	subject := fmt.Sprintf(subjectJobConfirmedFmt, caseTitle)
	html, err := renderEmailTemplate("job_confirmed.html", jobConfirmedData{
		baseEmailData: baseEmailData{
			Title:   subject,
			Heading: "Work has been scheduled",
		},
		RecipientName: recipientName,
		CaseTitle:     caseTitle,
		StartDate:     startAt.Format("Monday, 2 January 2006"),
		EndDate:       endAt.Format("Monday, 2 January 2006"),
	})
	return Message{Subject: subject, HTML: html}, err
}

func NewCounterProposalMessage(recipientName, caseTitle string, proposedTotalCents *int64, quoteURL string) (Message, error) {
	data := counterProposalData{
		baseEmailData: baseEmailData{
			Title:    fmt.Sprintf(subjectCounterProposalFmt, caseTitle),
			Heading:  "New counter-proposal",
			CTALabel: "View quote",
			CTAURL:   quoteURL,
		},
		RecipientName: recipientName,
		CaseTitle:     caseTitle,
	}
	if proposedTotalCents != nil {
		data.HasProposedTotal = true
		data.ProposedFormatted = formatCurrencyEUR(*proposedTotalCents)
	}
	html, err := renderEmailTemplate("counter_proposal.html", data)
	return Message{Subject: data.Title, HTML: html}, err
}

func NewAppointmentReminderMessage(recipientName, title string, startAt time.Time) (Message, error) {
	subject := fmt.Sprintf(subjectAppointmentReminderFmt, title)
	html, err := renderEmailTemplate("appointment_reminder.html", appointmentReminderData{
		baseEmailData: baseEmailData{
			Title:   subject,
			Heading: "Upcoming appointment",
		},
		RecipientName: recipientName,
		Title:         title,
		StartDate:     startAt.Format("Monday, 2 January 2006"),
		StartTime:     startAt.Format("15:04"),
	})
	return Message{Subject: subject, HTML: html}, err
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func formatCurrencyEUR(cents int64) string {
	return fmt.Sprintf("€%.2f", float64(cents)/100)
}
