package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/meetbrief/meetbrief/internal/mailer"
	"github.com/meetbrief/meetbrief/internal/model"
)

// shareBodyTmpl renders the one notification body a share call sends to every
// recipient. html/template escapes the user-controlled fields.
var shareBodyTmpl = template.Must(template.New("share").Parse(`
<h2>{{.Title}}</h2>
<p><strong>From:</strong> {{.SharerName}} ({{.SharerEmail}})</p>
<p><strong>Message:</strong> {{.Message}}</p>
<hr>
<h3>Summary:</h3>
<div style="white-space: pre-wrap;">{{.Content}}</div>
<hr>
<p><strong>Original Prompt:</strong> {{.Instruction}}</p>
<p><strong>Generated on:</strong> {{.GeneratedOn}}</p>
`))

const defaultShareMessage = "Please find the meeting summary attached."

// Sharer is the display identity of the principal performing a share.
type Sharer struct {
	Name  string
	Email string
}

// ShareRequest carries the caller-provided share parameters.
type ShareRequest struct {
	Recipients []string
	Subject    string
	Message    string
}

// ShareService fans a stored summary out to multiple recipients through the
// mail transport. Sharing is stateless: no record of the event is kept and
// the summary itself is never touched.
type ShareService struct {
	mailer          mailer.Mailer
	deliveryTimeout time.Duration
	log             zerolog.Logger
}

func NewShareService(m mailer.Mailer, deliveryTimeout time.Duration, log zerolog.Logger) *ShareService {
	if deliveryTimeout <= 0 {
		deliveryTimeout = 15 * time.Second
	}
	return &ShareService{mailer: m, deliveryTimeout: deliveryTimeout, log: log}
}

// Share renders one body and dispatches it to every recipient concurrently.
// Each delivery is an isolated unit of work with its own timeout; one
// recipient's failure never blocks or fails another's. The report always
// carries per-recipient outcomes; only when every delivery fails does the
// call itself fail, with model.ErrAllDeliveriesFailed.
func (s *ShareService) Share(ctx context.Context, sum *model.Summary, sharer Sharer, req ShareRequest) (*model.ShareReport, error) {
	if len(req.Recipients) == 0 {
		return nil, fmt.Errorf("%w: recipients are required", model.ErrValidation)
	}

	subject := req.Subject
	if subject == "" {
		subject = fmt.Sprintf("Meeting Summary: %s", sum.Title)
	}
	body, err := s.renderBody(sum, sharer, req.Message)
	if err != nil {
		return nil, fmt.Errorf("render share body: %w", err)
	}

	deliveries := make([]model.Delivery, len(req.Recipients))
	var wg sync.WaitGroup
	for i, rcpt := range req.Recipients {
		wg.Add(1)
		go func(i int, rcpt string) {
			defer wg.Done()
			dctx, cancel := context.WithTimeout(ctx, s.deliveryTimeout)
			defer cancel()

			if err := s.mailer.Send(dctx, rcpt, subject, body); err != nil {
				s.log.Error().Stack().Err(err).
					Str("recipient", rcpt).
					Str("summary_id", sum.SummaryID).
					Msg("share delivery failed")
				deliveries[i] = model.Delivery{Recipient: rcpt, Delivered: false, Error: err.Error()}
				return
			}
			deliveries[i] = model.Delivery{Recipient: rcpt, Delivered: true}
		}(i, rcpt)
	}
	wg.Wait()

	report := &model.ShareReport{Deliveries: deliveries}
	for _, d := range deliveries {
		if d.Delivered {
			report.DeliveredCount++
		} else {
			report.FailedCount++
		}
	}

	if report.DeliveredCount == 0 {
		return report, model.ErrAllDeliveriesFailed
	}
	return report, nil
}

func (s *ShareService) renderBody(sum *model.Summary, sharer Sharer, message string) (string, error) {
	if message == "" {
		message = defaultShareMessage
	}
	var buf bytes.Buffer
	err := shareBodyTmpl.Execute(&buf, map[string]interface{}{
		"Title":       sum.Title,
		"SharerName":  sharer.Name,
		"SharerEmail": sharer.Email,
		"Message":     message,
		"Content":     sum.CurrentContent(),
		"Instruction": sum.Instruction,
		"GeneratedOn": sum.CreationTime.Format(time.RFC1123),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SendTest delivers a configuration test email to the sharer's own address.
func (s *ShareService) SendTest(ctx context.Context, sharer Sharer) error {
	dctx, cancel := context.WithTimeout(ctx, s.deliveryTimeout)
	defer cancel()

	body := fmt.Sprintf(
		"<h2>Email Configuration Test</h2>"+
			"<p>If you received this email, your email configuration is working correctly!</p>"+
			"<p>Sent at: %s</p>", time.Now().Format(time.RFC1123))
	return s.mailer.Send(dctx, sharer.Email, "Email Configuration Test", body)
}
