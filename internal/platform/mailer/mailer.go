package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/billhound/billhound/pkg/config"
	"github.com/billhound/billhound/pkg/types"
)

const sendEndpoint = "https://api.resend.com/emails"

// ReminderItem is one upcoming bill in a reminder email.
type ReminderItem struct {
	Name         string
	Amount       float64
	DueDate      time.Time
	DaysUntilDue int
	Category     types.BillCategory
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Client sends transactional email through the hosted sender's HTTP API.
type Client struct {
	apiKey string
	from   string
	httpc  *http.Client
	tmpl   *template.Template
	log    *zap.SugaredLogger
}

func NewClient(cfg *cfgpkg.Config, log *zap.SugaredLogger) *Client {
	return &Client{
		apiKey: cfg.Mailer.APIKey,
		from:   cfg.Mailer.From,
		httpc:  &http.Client{Timeout: 15 * time.Second},
		tmpl:   template.Must(template.New("reminder").Parse(reminderTemplate)),
		log:    log,
	}
}

// SendBillReminders renders and sends one reminder email listing the given
// bills. The caller treats failures as non-fatal.
func (c *Client) SendBillReminders(ctx context.Context, to string, items []ReminderItem) error {
	if c.apiKey == "" {
		return fmt.Errorf("mailer api key not configured")
	}
	if len(items) == 0 {
		return nil
	}

	var htmlBuf bytes.Buffer
	if err := c.tmpl.Execute(&htmlBuf, map[string]any{"Items": items}); err != nil {
		return fmt.Errorf("failed to render reminder template: %w", err)
	}

	subject := fmt.Sprintf("You have %d bill(s) coming up", len(items))
	body, err := json.Marshal(sendRequest{From: c.from, To: to, Subject: subject, HTML: htmlBuf.String()})
	if err != nil {
		return fmt.Errorf("failed to encode send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendEndpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("send request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mailer responded %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}

const reminderTemplate = `<html><body>
<h2>Upcoming bills</h2>
<table border="0" cellpadding="6">
<tr><th align="left">Bill</th><th align="left">Amount</th><th align="left">Due</th><th align="left">Category</th></tr>
{{range .Items}}<tr>
<td>{{.Name}}</td>
<td>${{printf "%.2f" .Amount}}</td>
<td>{{.DueDate.Format "Jan 2"}} ({{.DaysUntilDue}} days)</td>
<td>{{.Category}}</td>
</tr>{{end}}
</table>
</body></html>`

var Module = fx.Options(
	fx.Provide(NewClient),
)
