// Package trivia imports questions from the Open Trivia Database
// (https://opentdb.com/) and converts them into the local question format.
package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/skepesis/skepesis/internal/store"
)

const (
	defaultBaseURL = "https://opentdb.com"
	requestTimeout = 30 * time.Second
	// maxAmount is the upstream API's per-request question limit.
	maxAmount = 50
)

// Question kinds as stored locally.
const (
	TypeMultipleChoice = "multiple_choice"
	TypeTrueFalse      = "true_false"
)

// FetchOptions narrow a question fetch. Zero values are unfiltered.
type FetchOptions struct {
	Amount     int
	CategoryID int
	Difficulty string // easy, medium, or hard
	Type       string // multiple or boolean
}

// Client fetches questions from the Open Trivia Database.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a trivia client. An empty baseURL targets opentdb.com.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type apiResponse struct {
	ResponseCode int         `json:"response_code"`
	Results      []apiResult `json:"results"`
}

type apiResult struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// FetchQuestions retrieves questions and converts them to the local format.
func (c *Client) FetchQuestions(ctx context.Context, opts FetchOptions) ([]*store.Question, error) {
	amount := opts.Amount
	if amount <= 0 {
		amount = 10
	}
	if amount > maxAmount {
		amount = maxAmount
	}

	params := url.Values{}
	params.Set("amount", strconv.Itoa(amount))
	if opts.Type != "" {
		params.Set("type", opts.Type)
	}
	if opts.CategoryID > 0 {
		params.Set("category", strconv.Itoa(opts.CategoryID))
	}
	if opts.Difficulty != "" {
		params.Set("difficulty", opts.Difficulty)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api.php?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build trivia request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch trivia questions: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trivia API returned status %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode trivia response: %w", err)
	}
	if body.ResponseCode != 0 {
		return nil, fmt.Errorf("trivia API error: response_code %d", body.ResponseCode)
	}

	questions := make([]*store.Question, 0, len(body.Results))
	for _, item := range body.Results {
		questions = append(questions, convertQuestion(item))
	}
	return questions, nil
}

// Categories fetches the upstream category catalog, keyed by category ID.
func (c *Client) Categories(ctx context.Context) (map[int]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api_category.php", nil)
	if err != nil {
		return nil, fmt.Errorf("build category request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch trivia categories: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trivia API returned status %d", resp.StatusCode)
	}

	var body struct {
		TriviaCategories []struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"trivia_categories"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode category response: %w", err)
	}

	categories := make(map[int]string, len(body.TriviaCategories))
	for _, cat := range body.TriviaCategories {
		categories[cat.ID] = cat.Name
	}
	return categories, nil
}

var difficultyMap = map[string]string{
	"easy":   "beginner",
	"medium": "intermediate",
	"hard":   "advanced",
}

// convertQuestion maps one upstream result to a local question: HTML
// entities decoded, difficulty renamed, category prefixes dropped, and
// multiple-choice options shuffled onto letter keys.
func convertQuestion(item apiResult) *store.Question {
	difficulty, ok := difficultyMap[item.Difficulty]
	if !ok {
		difficulty = "beginner"
	}

	category := item.Category
	if category == "" {
		category = "General Knowledge"
	}
	category = strings.ReplaceAll(category, "Entertainment: ", "")
	category = strings.ReplaceAll(category, "Science: ", "")

	q := &store.Question{
		Prompt:     html.UnescapeString(item.Question),
		Category:   category,
		Difficulty: difficulty,
		Source:     "opentdb",
	}

	correct := html.UnescapeString(item.CorrectAnswer)

	if item.Type == "boolean" {
		q.QuestionType = TypeTrueFalse
		q.Options = map[string]string{"True": "True", "False": "False"}
		q.CorrectAnswer = "False"
		if strings.EqualFold(correct, "true") {
			q.CorrectAnswer = "True"
		}
		return q
	}

	q.QuestionType = TypeMultipleChoice
	options := make([]string, 0, len(item.IncorrectAnswers)+1)
	options = append(options, correct)
	for _, wrong := range item.IncorrectAnswers {
		options = append(options, html.UnescapeString(wrong))
	}
	// Track the correct option by position through the shuffle; matching
	// on text would mis-key the answer if an incorrect option happens to
	// carry the same string.
	correctIdx := 0
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
		switch correctIdx {
		case i:
			correctIdx = j
		case j:
			correctIdx = i
		}
	})

	q.Options = make(map[string]string, len(options))
	for i, option := range options {
		q.Options[string(rune('A'+i))] = option
	}
	q.CorrectAnswer = string(rune('A' + correctIdx))
	return q
}
