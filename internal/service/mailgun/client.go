package mailgun

import (
	"context"
	"fmt"
	"html"
	"math"
	"net/url"
	"strings"
	"time"

	"MarketBrief/internal/domain/models"
	domsvc "MarketBrief/internal/domain/service"
	xhttp "MarketBrief/pkg/http"
	xlogger "MarketBrief/pkg/logger"
)

// moverThreshold is the absolute day-change percent above which a ticker
// is listed in the email summary line.
const moverThreshold = 2.0

// Client delivers the analysis report by email through the Mailgun
// messages API. A client with incomplete credentials is a no-op.
type Client struct {
	baseURL   string
	apiKey    string
	domain    string
	recipient string
	client    *xhttp.Client
	logger    *xlogger.Logger
}

func New(baseURL, apiKey, domain, recipient string, timeout time.Duration, logger *xlogger.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		domain:    domain,
		recipient: recipient,
		client:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
		logger:    logger,
	}
}

// Configured reports whether all three credentials are present.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.domain != "" && c.recipient != ""
}

// SendReport posts the report email and returns whether delivery was
// accepted. Delivery failures are logged, never propagated.
func (c *Client) SendReport(ctx context.Context, analysis string, quotes map[string]*models.TickerQuote) bool {
	if !c.Configured() {
		c.logger.Info("email not configured, skipping report delivery")
		return false
	}

	now := time.Now().UTC()
	subject := fmt.Sprintf("📊 Daily Stock Analysis - %s", now.Format("2006-01-02"))

	form := url.Values{}
	form.Set("from", fmt.Sprintf("Stock Analysis <noreply@%s>", c.domain))
	form.Set("to", c.recipient)
	form.Set("subject", subject)
	form.Set("html", buildHTML(analysis, quotes, now))

	endpoint := fmt.Sprintf("%s/v3/%s/messages", c.baseURL, c.domain)
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:    xhttp.MethodPost,
		URL:       endpoint,
		Headers:   map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		Body:      form,
		BasicAuth: &xhttp.BasicAuth{Username: "api", Password: c.apiKey},
	}, nil)
	if err != nil {
		c.logger.Error("email delivery failed", xlogger.Error(err))
		return false
	}

	c.logger.Info("report emailed", xlogger.String("to", c.recipient))
	return true
}

// Movers lists tickers whose absolute day change exceeds the threshold,
// formatted as "SYM: x%".
func Movers(quotes map[string]*models.TickerQuote) []string {
	var movers []string
	for sym, q := range quotes {
		if q == nil || !q.Valid() {
			continue
		}
		if math.Abs(q.ChangePercent) > moverThreshold {
			movers = append(movers, fmt.Sprintf("%s: %v%%", sym, q.ChangePercent))
		}
	}
	return movers
}

func buildHTML(analysis string, quotes map[string]*models.TickerQuote, now time.Time) string {
	movers := Movers(quotes)
	moverLine := "No significant movers today"
	if len(movers) > 0 {
		moverLine = strings.Join(movers, ", ")
	}

	var b strings.Builder
	b.WriteString(`<html><body style="font-family: Arial, sans-serif; max-width: 800px; margin: 0 auto;">`)
	b.WriteString(`<div style="background: #1a1a2e; color: white; padding: 20px; border-radius: 8px 8px 0 0;">`)
	b.WriteString(`<h1 style="margin: 0;">📊 Daily Stock Analysis</h1>`)
	b.WriteString(fmt.Sprintf(`<p style="margin: 5px 0 0; opacity: 0.8;">%s</p>`, now.Format("January 2, 2006 15:04 MST")))
	b.WriteString(`</div>`)
	b.WriteString(`<div style="background: #f5f5f5; padding: 15px; border-left: 4px solid #e94560;">`)
	b.WriteString(fmt.Sprintf(`<strong>Significant Movers:</strong> %s`, html.EscapeString(moverLine)))
	b.WriteString(`</div>`)
	b.WriteString(`<div style="padding: 20px; background: white; border: 1px solid #ddd; border-radius: 0 0 8px 8px;">`)
	b.WriteString(fmt.Sprintf(`<pre style="white-space: pre-wrap; font-family: inherit; margin: 0;">%s</pre>`, html.EscapeString(analysis)))
	b.WriteString(`</div>`)
	b.WriteString(`</body></html>`)
	return b.String()
}

var _ domsvc.Notifier = (*Client)(nil)
