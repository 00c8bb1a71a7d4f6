// Package opentdb imports multiple-choice questions from the Open Trivia
// Database API.
package opentdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	defaultBaseURL = "https://opentdb.com"
	defaultAmount  = 10
)

// RawQuestion mirrors the OpenTriviaDB question payload. Text fields are
// HTML-entity encoded until the importer decodes them.
type RawQuestion struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// Category is one OpenTriviaDB question category.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type apiResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []RawQuestion `json:"results"`
}

type categoryResponse struct {
	TriviaCategories []Category `json:"trivia_categories"`
}

// Client talks to the OpenTriviaDB API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client; a nil httpClient falls back to the default.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: defaultBaseURL, http: httpClient}
}

// FetchQuestions retrieves amount multiple-choice questions, optionally
// narrowed by category id and difficulty. Non-positive amounts fall back
// to the API default of 10.
func (c *Client) FetchQuestions(ctx context.Context, amount int, category, difficulty string) ([]RawQuestion, error) {
	if amount <= 0 {
		amount = defaultAmount
	}
	params := url.Values{}
	params.Set("amount", strconv.Itoa(amount))
	params.Set("type", "multiple")
	if category != "" {
		params.Set("category", category)
	}
	if difficulty != "" {
		params.Set("difficulty", difficulty)
	}

	var payload apiResponse
	if err := c.getJSON(ctx, "/api.php?"+params.Encode(), &payload); err != nil {
		return nil, err
	}
	if payload.ResponseCode != 0 {
		return nil, fmt.Errorf("opentdb response_code=%d", payload.ResponseCode)
	}
	return payload.Results, nil
}

// Categories lists the available question categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var payload categoryResponse
	if err := c.getJSON(ctx, "/api_category.php", &payload); err != nil {
		return nil, err
	}
	return payload.TriviaCategories, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("opentdb returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
