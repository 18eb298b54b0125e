package contact

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"intake/internal/constants"
	"intake/internal/mailer"
	apperrors "intake/pkg/errors"
)

const submittedLayout = "Jan 2, 2006, 3:04:05 PM MST"

type Notifier interface {
	Notify(ctx context.Context, sub Submission) error
}

// NotifyError is returned when the notification could not be delivered.
type NotifyError struct {
	Cause error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("notification failed: %v", e.Cause)
}

func (e *NotifyError) Unwrap() error {
	return e.Cause
}

func (e *NotifyError) Is(target error) bool {
	return target == apperrors.ErrSinkFailure
}

var notificationTemplate = template.Must(template.New("notification").Parse(`
<h2>New Contact Form Submission</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Phone:</strong> {{.Phone}}</p>
<p><strong>Organization:</strong> {{.Organization}}</p>
<p><strong>Message:</strong> {{.Message}}</p>
<p><strong>Submitted:</strong> {{.Submitted}}</p>
`))

type notificationView struct {
	Name         string
	Email        string
	Phone        string
	Organization string
	Message      string
	Submitted    string
}

type EmailNotifier struct {
	sender   mailer.Sender
	from     string
	to       string
	location *time.Location
	clock    func() time.Time
}

type EmailNotifierOption func(*EmailNotifier)

func WithNotifierClock(clock func() time.Time) EmailNotifierOption {
	return func(n *EmailNotifier) {
		n.clock = clock
	}
}

func NewEmailNotifier(sender mailer.Sender, from, to string, location *time.Location, opts ...EmailNotifierOption) *EmailNotifier {
	if location == nil {
		location = time.UTC
	}
	n := &EmailNotifier{
		sender:   sender,
		from:     from,
		to:       to,
		location: location,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *EmailNotifier) Notify(ctx context.Context, sub Submission) error {
	msg, err := n.BuildMessage(sub)
	if err != nil {
		return &NotifyError{Cause: err}
	}

	if err := n.sender.Send(ctx, msg); err != nil {
		return &NotifyError{Cause: err}
	}

	return nil
}

// BuildMessage renders the notification email. All submission values are HTML-escaped.
func (n *EmailNotifier) BuildMessage(sub Submission) (mailer.Message, error) {
	view := notificationView{
		Name:         sub.Name(),
		Email:        sub.Email(),
		Phone:        orNotProvided(sub.Phone()),
		Organization: orNotProvided(sub.Organization()),
		Message:      sub.Message(),
		Submitted:    n.clock().In(n.location).Format(submittedLayout),
	}

	var buf bytes.Buffer
	if err := notificationTemplate.Execute(&buf, view); err != nil {
		return mailer.Message{}, fmt.Errorf("failed to render notification: %w", err)
	}

	return mailer.Message{
		From:    n.from,
		To:      []string{n.to},
		Subject: "New Contact Form Submission from " + sub.Name(),
		HTML:    buf.String(),
	}, nil
}

func orNotProvided(v string) string {
	if v == "" {
		return constants.NotProvided
	}
	return v
}
