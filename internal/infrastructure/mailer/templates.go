package mailer

import (
	"bytes"
	htmltemplate "html/template"
	"text/template"
)

// LineData is one purchased line as shown in a confirmation
type LineData struct {
	Description string
	Quantity    int64
	Amount      string
}

// ConfirmationData fills the purchase confirmation email
type ConfirmationData struct {
	Reference     string
	Total         string
	Lines         []LineData
	Subscription  bool
	GiftRecipient string
}

// GiftData fills the gift recipient notice
type GiftData struct {
	PurchaserEmail string
	Reference      string
}

// PaymentFailedData fills the failed invoice notice
type PaymentFailedData struct {
	Amount     string
	InvoiceURL string
}

type emailTemplate struct {
	subject string
	text    *template.Template
	html    *htmltemplate.Template
}

func newTemplate(subject, text, html string) emailTemplate {
	return emailTemplate{
		subject: subject,
		text:    template.Must(template.New("text").Parse(text)),
		html:    htmltemplate.Must(htmltemplate.New("html").Parse(html)),
	}
}

func (t emailTemplate) render(to string, data any) (Message, error) {
	var text, html bytes.Buffer
	if err := t.text.Execute(&text, data); err != nil {
		return Message{}, err
	}
	if err := t.html.Execute(&html, data); err != nil {
		return Message{}, err
	}
	return Message{
		To:       []string{to},
		Subject:  t.subject,
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}

var (
	confirmationTmpl = newTemplate("Your FitCoach order",
		`Thank you for your order!

Reference: {{.Reference}}
{{range .Lines}}- {{.Description}} x{{.Quantity}}: {{.Amount}}
{{end}}Total: {{.Total}}
{{if .Subscription}}
Your subscription is active. You can cancel at any time from your account.
{{end}}{{if .GiftRecipient}}
We have let {{.GiftRecipient}} know about your gift.
{{end}}
Your receipt is attached.
`,
		`<p>Thank you for your order!</p>
<p>Reference: <strong>{{.Reference}}</strong></p>
<ul>{{range .Lines}}<li>{{.Description}} &times;{{.Quantity}}: {{.Amount}}</li>{{end}}</ul>
<p>Total: <strong>{{.Total}}</strong></p>
{{if .Subscription}}<p>Your subscription is active. You can cancel at any time from your account.</p>{{end}}
{{if .GiftRecipient}}<p>We have let {{.GiftRecipient}} know about your gift.</p>{{end}}
<p>Your receipt is attached.</p>
`)

	giftTmpl = newTemplate("You have received a FitCoach gift",
		`Good news! {{.PurchaserEmail}} has gifted you a FitCoach program.

Gift reference: {{.Reference}}
Reply to this email to schedule your first session.
`,
		`<p>Good news! {{.PurchaserEmail}} has gifted you a FitCoach program.</p>
<p>Gift reference: <strong>{{.Reference}}</strong></p>
<p>Reply to this email to schedule your first session.</p>
`)

	paymentFailedTmpl = newTemplate("Action needed: your FitCoach payment failed",
		`We could not collect your subscription payment of {{.Amount}}.
{{if .InvoiceURL}}
Update your payment method here: {{.InvoiceURL}}
{{end}}`,
		`<p>We could not collect your subscription payment of <strong>{{.Amount}}</strong>.</p>
{{if .InvoiceURL}}<p><a href="{{.InvoiceURL}}">Update your payment method</a></p>{{end}}
`)

	welcomeTmpl = newTemplate("Welcome to FitCoach",
		`Hi {{.}},

Thanks for reaching out! A coach will get back to you within one business day.
`,
		`<p>Hi {{.}},</p>
<p>Thanks for reaching out! A coach will get back to you within one business day.</p>
`)
)

// PurchaseConfirmation builds the buyer's order confirmation. receipt may be nil.
func PurchaseConfirmation(to string, d ConfirmationData, receipt *Attachment) (Message, error) {
	m, err := confirmationTmpl.render(to, d)
	if err != nil {
		return Message{}, err
	}
	if receipt != nil {
		m.Attachments = []Attachment{*receipt}
	}
	return m, nil
}

// GiftNotification builds the notice sent to a gift recipient
func GiftNotification(to string, d GiftData) (Message, error) {
	return giftTmpl.render(to, d)
}

// PaymentFailed builds the notice sent when a subscription invoice fails
func PaymentFailed(to string, d PaymentFailedData) (Message, error) {
	return paymentFailedTmpl.render(to, d)
}

// ProspectWelcome builds the reply to a contact form submission
func ProspectWelcome(to, name string) (Message, error) {
	return welcomeTmpl.render(to, name)
}

// TestMessage is sent by the ops CLI to check SMTP settings
func TestMessage(to string) Message {
	return Message{
		To:       []string{to},
		Subject:  "FitCoach SMTP test",
		TextBody: "This is a test message from fitctl.\n",
	}
}
