package fmp

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
	"MarketBrief/pkg/util"
)

const (
	userAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	maxArticles = 5
	maxTextLen  = 300
)

// Client fetches stock news from Financial Modeling Prep. Every failure
// mode degrades to the Unavailable branch; FetchNews never errors.
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

type rawArticle struct {
	Title         string `json:"title"`
	Text          string `json:"text"`
	PublishedDate string `json:"publishedDate"`
	Symbol        string `json:"symbol"`
	URL           string `json:"url"`
}

func (c *Client) FetchNews(ctx context.Context, symbols []string) *models.MarketNews {
	if c.apiKey == "" {
		c.logger.Warn("news api key not configured")
		return unavailable("Market news unavailable: FMP_API_KEY not configured. Sign up at https://financialmodelingprep.com/developer/docs")
	}

	var body []byte
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.baseURL + "/api/v3/stock_news",
		Headers: map[string]string{"User-Agent": userAgent},
		QueryParams: map[string][]string{
			"tickers": {strings.Join(symbols, ",")},
			"limit":   {"10"},
			"apikey":  {c.apiKey},
		},
	}, &body)
	if err != nil {
		c.logger.Warn("news fetch failed", xlogger.Error(err))
		return unavailable(statusReason(err))
	}

	// The provider returns a JSON list on success and an error object on
	// some credential problems, so decoding has to be shape-tolerant.
	var articles []rawArticle
	if jsonErr := json.Unmarshal(body, &articles); jsonErr != nil {
		c.logger.Warn("news payload not a list")
		return unavailable("Market news unavailable: Invalid data format received from API")
	}

	if len(articles) == 0 {
		c.logger.Warn("news provider returned no articles")
		return unavailable("Market news unavailable: No articles returned from API. This could indicate rate limits reached or no news available for selected tickers.")
	}

	if len(articles) > maxArticles {
		articles = articles[:maxArticles]
	}

	processed := make([]models.NewsArticle, 0, len(articles))
	for _, a := range articles {
		article := models.NewsArticle{
			Title:         a.Title,
			Text:          "No content available",
			PublishedDate: a.PublishedDate,
			Symbol:        a.Symbol,
			URL:           a.URL,
		}
		if article.Title == "" {
			article.Title = "No title"
		}
		if article.PublishedDate == "" {
			article.PublishedDate = "Unknown date"
		}
		if article.Symbol == "" {
			article.Symbol = "N/A"
		}
		if article.URL == "" {
			article.URL = "#"
		}
		if a.Text != "" {
			article.Text = util.Truncate(a.Text, maxTextLen)
		}
		processed = append(processed, article)
	}

	c.logger.Info("processed news articles", xlogger.Int("count", len(processed)))
	return &models.MarketNews{Articles: processed}
}

// statusReason converts an upstream failure into the user-facing
// unavailability string, status-specific where possible.
func statusReason(err error) string {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		switch {
		case se.Status == 403:
			return "Market news unavailable: Access forbidden. Please check your FMP_API_KEY is valid and not rate-limited."
		case se.Status == 401:
			return "Market news unavailable: Invalid API key. Please verify your FMP_API_KEY."
		case se.Status == 429:
			return "Market news unavailable: Rate limit exceeded. Please wait or upgrade your Financial Modeling Prep plan."
		case se.Status >= 500:
			return fmt.Sprintf("Market news unavailable: HTTP %d - Server error on Financial Modeling Prep side. Try again later.", se.Status)
		default:
			return fmt.Sprintf("Market news unavailable: HTTP %d", se.Status)
		}
	}
	return fmt.Sprintf("Market news unavailable: %v", err)
}

func unavailable(reason string) *models.MarketNews {
	return &models.MarketNews{Unavailable: reason}
}

var _ domsvc.NewsProvider = (*Client)(nil)
