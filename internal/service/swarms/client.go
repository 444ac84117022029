package swarms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"MarketBrief/internal/domain/models"
	domsvc "MarketBrief/internal/domain/service"
	xhttp "MarketBrief/pkg/http"
	xlogger "MarketBrief/pkg/logger"
)

const completionsPath = "/v1/swarm/completions"

const technicalPrompt = `You are a professional technical analyst. Analyze the provided real market data:
- Calculate key technical indicators (RSI, MACD, Moving Averages)
- Identify support and resistance levels
- Determine market trends and momentum
- Provide trading signals and price targets
Format your analysis professionally with specific price levels.`

const fundamentalPrompt = `You are a fundamental market analyst. Using the provided market data and any available news:
- Analyze company fundamentals and market conditions
- Evaluate economic indicators and market sentiment
- Assess sector rotation and value opportunities
- Identify risks and catalysts
- If news data is unavailable, focus on technical patterns and historical data
Provide investment recommendations with risk assessment.`

// Client submits analysis tasks to the Swarms completion API.
type Client struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
	logger  *xlogger.Logger
}

func New(baseURL, apiKey string, timeout time.Duration, logger *xlogger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		logger:  logger,
	}
}

type agentConfig struct {
	AgentName    string  `json:"agent_name"`
	SystemPrompt string  `json:"system_prompt"`
	ModelName    string  `json:"model_name"`
	MaxTokens    int     `json:"max_tokens"`
	Temperature  float64 `json:"temperature"`
}

type swarmRequest struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Agents      []agentConfig `json:"agents"`
	SwarmType   string        `json:"swarm_type"`
	Task        string        `json:"task"`
	MaxLoops    int           `json:"max_loops"`
}

type billingInfo struct {
	BillingInfo struct {
		TotalCost *float64 `json:"total_cost"`
	} `json:"billing_info"`
}

type swarmResponse struct {
	Output   json.RawMessage `json:"output"`
	Usage    *billingInfo    `json:"usage"`
	Metadata *billingInfo    `json:"metadata"`
}

type agentOutput struct {
	Role      string `json:"role"`
	AgentName string `json:"agent_name"`
	Content   string `json:"content"`
	Response  string `json:"response"`
}

// Analyze posts the swarm task and returns the normalized narrative and
// optional billing cost. Fails on non-2xx responses and empty output.
func (c *Client) Analyze(ctx context.Context, quotes map[string]*models.TickerQuote, news *models.MarketNews) (string, *float64, error) {
	req := swarmRequest{
		Name:        "Real-Time Stock Analysis",
		Description: "Live market data analysis with AI agents",
		Agents: []agentConfig{
			{
				AgentName:    "Technical Analyst",
				SystemPrompt: technicalPrompt,
				ModelName:    "gpt-4o-mini",
				MaxTokens:    1500,
				Temperature:  0.2,
			},
			{
				AgentName:    "Fundamental Analyst",
				SystemPrompt: fundamentalPrompt,
				ModelName:    "gpt-4o-mini",
				MaxTokens:    1500,
				Temperature:  0.3,
			},
		},
		SwarmType: "ConcurrentWorkflow",
		Task:      BuildTask(quotes, news),
		MaxLoops:  1,
	}

	var resp swarmResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.baseURL + completionsPath,
		Headers: map[string]string{
			"x-api-key":    c.apiKey,
			"Content-Type": "application/json",
		},
		Body: req,
	}, &resp)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) {
			return "", nil, fmt.Errorf("Swarms API error: %d - %s", se.Status, se.Body)
		}
		return "", nil, fmt.Errorf("Swarms API request failed: %w", err)
	}

	if emptyOutput(resp.Output) {
		return "", nil, fmt.Errorf("No analysis output received from Swarms API")
	}

	cost := extractCost(&resp)
	analysis := normalizeOutput(resp.Output)

	c.logger.Info("analysis completed", xlogger.Int("chars", len(analysis)))
	return analysis, cost, nil
}

// BuildTask assembles the task text. The news-catalyst directive appears
// only when the articles branch is populated; otherwise a status line
// explains the degradation.
func BuildTask(quotes map[string]*models.TickerQuote, news *models.MarketNews) string {
	marketJSON, _ := json.MarshalIndent(quotes, "", "  ")

	var b strings.Builder
	if news.Available() {
		b.WriteString("Analyze the following real market data and news:\n\n")
	} else {
		b.WriteString("Analyze the following real market data:\n\n")
	}

	b.WriteString("MARKET DATA:\n")
	b.Write(marketJSON)
	b.WriteString("\n\n")

	if news.Available() {
		newsJSON, _ := json.MarshalIndent(news.Articles, "", "  ")
		b.WriteString("MARKET NEWS:\n")
		b.Write(newsJSON)
	} else {
		b.WriteString("NEWS STATUS: ")
		b.WriteString(news.Unavailable)
	}

	b.WriteString("\n\nProvide comprehensive analysis with:\n")
	b.WriteString("1. Technical analysis with key levels and trends\n")
	if news.Available() {
		b.WriteString("2. Fundamental analysis incorporating news catalysts\n")
	} else {
		b.WriteString("2. Fundamental analysis based on price action and market structure\n")
	}
	b.WriteString("3. Trading recommendations with entry/exit points\n")
	b.WriteString("4. Risk assessment and position sizing\n")
	b.WriteString("5. Key levels to watch for tomorrow's session")

	return b.String()
}

// emptyOutput reports whether the output field carries nothing usable:
// absent, null, an empty string, an empty list, or an empty object.
func emptyOutput(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return true
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []interface{}:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	}
	return false
}

// normalizeOutput flattens the three observed output shapes into one
// narrative string.
func normalizeOutput(raw json.RawMessage) string {
	var agents []agentOutput
	if err := json.Unmarshal(raw, &agents); err == nil {
		sections := make([]string, 0, len(agents))
		for _, a := range agents {
			name := a.Role
			if name == "" {
				name = a.AgentName
			}
			if name == "" {
				name = "AI Agent"
			}
			content := a.Content
			if content == "" {
				content = a.Response
			}
			sections = append(sections, fmt.Sprintf("## 🤖 %s\n\n%s\n\n%s\n", name, content, strings.Repeat("=", 80)))
		}
		return strings.Join(sections, "\n")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err == nil {
		pretty, _ := json.MarshalIndent(v, "", "  ")
		return string(pretty)
	}
	return string(raw)
}

// extractCost prefers usage.billing_info over metadata.billing_info.
func extractCost(resp *swarmResponse) *float64 {
	if resp.Usage != nil && resp.Usage.BillingInfo.TotalCost != nil {
		return resp.Usage.BillingInfo.TotalCost
	}
	if resp.Metadata != nil && resp.Metadata.BillingInfo.TotalCost != nil {
		return resp.Metadata.BillingInfo.TotalCost
	}
	return nil
}

var _ domsvc.Analyzer = (*Client)(nil)
