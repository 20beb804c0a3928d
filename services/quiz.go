package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"admissions_app_go/models"
	"admissions_app_go/services/i18n"
	"admissions_app_go/services/logger"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Career categories, in tie-break order
const (
	CategoryCrew     = "crew"
	CategoryGround   = "ground"
	CategoryHotel    = "hotel"
	CategoryCulinary = "culinary"
	CategoryTravel   = "travel"
)

// CategoryOrder decides ties: the earliest category with the maximum total wins
var CategoryOrder = []string{CategoryCrew, CategoryGround, CategoryHotel, CategoryCulinary, CategoryTravel}

// QuizOption is one answer choice and the weights it adds
type QuizOption struct {
	Key     string         `json:"key"`
	Text    string         `json:"text"`
	Weights map[string]int `json:"-"`
}

type QuizQuestion struct {
	Number  int          `json:"number"`
	Text    string       `json:"text"`
	Options []QuizOption `json:"options"`
}

func (q QuizQuestion) option(key string) (QuizOption, bool) {
	for _, o := range q.Options {
		if o.Key == key {
			return o, true
		}
	}
	return QuizOption{}, false
}

// QuizQuestions is the fixed questionnaire. Option A always leans to cabin crew.
var QuizQuestions = []QuizQuestion{
	{1, "How do you like to spend a typical working day?", []QuizOption{
		{"A", "Travelling to new cities and meeting people", map[string]int{CategoryCrew: 3, CategoryTravel: 1}},
		{"B", "Keeping operations running smoothly on the ground", map[string]int{CategoryGround: 3}},
		{"C", "Welcoming and looking after guests", map[string]int{CategoryHotel: 3}},
		{"D", "Creating something with my hands", map[string]int{CategoryCulinary: 3}},
	}},
	{2, "Which environment excites you most?", []QuizOption{
		{"A", "An aircraft cabin at 35,000 feet", map[string]int{CategoryCrew: 3}},
		{"B", "A busy airport terminal", map[string]int{CategoryGround: 2, CategoryCrew: 1}},
		{"C", "A luxury hotel lobby", map[string]int{CategoryHotel: 3}},
		{"D", "A professional kitchen", map[string]int{CategoryCulinary: 3}},
	}},
	{3, "How comfortable are you with irregular hours?", []QuizOption{
		{"A", "I love night flights and changing schedules", map[string]int{CategoryCrew: 3}},
		{"B", "Shifts are fine if I stay in one place", map[string]int{CategoryGround: 2, CategoryHotel: 1}},
		{"C", "I prefer predictable shifts", map[string]int{CategoryHotel: 2, CategoryTravel: 1}},
		{"D", "Early mornings in the kitchen suit me", map[string]int{CategoryCulinary: 2}},
	}},
	{4, "What is your strongest skill?", []QuizOption{
		{"A", "Staying calm and caring in an emergency", map[string]int{CategoryCrew: 3}},
		{"B", "Solving problems under time pressure", map[string]int{CategoryGround: 3}},
		{"C", "Making people feel at home", map[string]int{CategoryHotel: 3}},
		{"D", "Planning trips and itineraries", map[string]int{CategoryTravel: 3}},
	}},
	{5, "Pick a dream workplace.", []QuizOption{
		{"A", "An international airline", map[string]int{CategoryCrew: 3}},
		{"B", "An airport operations team", map[string]int{CategoryGround: 3}},
		{"C", "A five-star resort", map[string]int{CategoryHotel: 2, CategoryCulinary: 1}},
		{"D", "A global travel agency", map[string]int{CategoryTravel: 3}},
	}},
	{6, "How do you feel about grooming and uniform standards?", []QuizOption{
		{"A", "I enjoy a polished, professional look", map[string]int{CategoryCrew: 2, CategoryHotel: 1}},
		{"B", "Happy to wear a uniform for safety", map[string]int{CategoryGround: 2}},
		{"C", "Chef whites are my kind of uniform", map[string]int{CategoryCulinary: 3}},
		{"D", "I prefer smart casual", map[string]int{CategoryTravel: 2}},
	}},
	{7, "Which languages do you speak confidently?", []QuizOption{
		{"A", "English and at least one other language", map[string]int{CategoryCrew: 3, CategoryTravel: 1}},
		{"B", "English and Hindi", map[string]int{CategoryGround: 2, CategoryHotel: 1}},
		{"C", "I am improving my English", map[string]int{CategoryCulinary: 2}},
		{"D", "Several languages, and I love learning more", map[string]int{CategoryTravel: 3}},
	}},
	{8, "What motivates you at work?", []QuizOption{
		{"A", "Seeing the world", map[string]int{CategoryCrew: 3}},
		{"B", "Keeping things safe and on time", map[string]int{CategoryGround: 3}},
		{"C", "Happy guests and good reviews", map[string]int{CategoryHotel: 3}},
		{"D", "Compliments on my food", map[string]int{CategoryCulinary: 3}},
	}},
	{9, "How do you react to a difficult customer?", []QuizOption{
		{"A", "Smile, listen and reassure them", map[string]int{CategoryCrew: 2, CategoryHotel: 1}},
		{"B", "Find the fastest fix for their problem", map[string]int{CategoryGround: 2}},
		{"C", "Offer them something special", map[string]int{CategoryHotel: 2, CategoryCulinary: 1}},
		{"D", "Rebook their plans with better options", map[string]int{CategoryTravel: 3}},
	}},
	{10, "Where do you see yourself in five years?", []QuizOption{
		{"A", "Senior cabin crew or purser", map[string]int{CategoryCrew: 3}},
		{"B", "Airport duty manager", map[string]int{CategoryGround: 3}},
		{"C", "Front office or F&B manager", map[string]int{CategoryHotel: 3}},
		{"D", "Running my own travel business", map[string]int{CategoryTravel: 3}},
	}},
}

// CourseRecommendation is the course suggested for a winning category
type CourseRecommendation struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Route       string `json:"route"`
}

var recommendations = map[string]CourseRecommendation{
	CategoryCrew: {
		Category:    CategoryCrew,
		Title:       "Cabin Crew Training",
		Description: "Train for a flying career with safety, service and grooming modules taught by ex-airline crew.",
		Icon:        "plane",
		Route:       "/courses/cabin-crew",
	},
	CategoryGround: {
		Category:    CategoryGround,
		Title:       "Airport Ground Staff",
		Description: "Learn check-in, ramp and passenger handling operations used at major Indian airports.",
		Icon:        "tower",
		Route:       "/courses/ground-staff",
	},
	CategoryHotel: {
		Category:    CategoryHotel,
		Title:       "Hotel Management",
		Description: "Front office, housekeeping and guest relations for a career with leading hotel chains.",
		Icon:        "hotel",
		Route:       "/courses/hotel-management",
	},
	CategoryCulinary: {
		Category:    CategoryCulinary,
		Title:       "Culinary Arts",
		Description: "Hands-on kitchen training from basics to plated desserts with industry internships.",
		Icon:        "chef-hat",
		Route:       "/courses/culinary-arts",
	},
	CategoryTravel: {
		Category:    CategoryTravel,
		Title:       "Travel & Tourism",
		Description: "Ticketing, tour planning and GDS systems for agencies and tour operators.",
		Icon:        "globe",
		Route:       "/courses/travel-tourism",
	},
}

// RecommendationFor returns the course for a category
func RecommendationFor(category string) (CourseRecommendation, bool) {
	r, ok := recommendations[category]
	return r, ok
}

// QuizScore holds the category totals and the winner
type QuizScore struct {
	Totals      map[string]int `json:"totals"`
	TopCategory string         `json:"top_category"`
}

// ScoreQuiz adds up the weights of the chosen options. answers must hold one
// key (A-D) per question, in question order.
func ScoreQuiz(answers []string) (QuizScore, error) {
	if len(answers) != len(QuizQuestions) {
		return QuizScore{}, newLeadError(KindInvalidQuizAnswers, "answers")
	}

	totals := make(map[string]int, len(CategoryOrder))
	for _, c := range CategoryOrder {
		totals[c] = 0
	}

	for i, q := range QuizQuestions {
		opt, ok := q.option(strings.ToUpper(strings.TrimSpace(answers[i])))
		if !ok {
			return QuizScore{}, newLeadError(KindInvalidQuizAnswers, fmt.Sprintf("answers[%d]", i))
		}
		for category, w := range opt.Weights {
			totals[category] += w
		}
	}

	top := CategoryOrder[0]
	for _, c := range CategoryOrder[1:] {
		if totals[c] > totals[top] {
			top = c
		}
	}

	return QuizScore{Totals: totals, TopCategory: top}, nil
}

// BlurbGenerator writes a short personalised note for a recommendation
type BlurbGenerator interface {
	GenerateBlurb(ctx context.Context, rec CourseRecommendation, score QuizScore, lang string) (string, error)
}

// GenAIClient writes blurbs with Gemini through the genai SDK
type GenAIClient struct {
	client *genai.Client
	model  string
}

// NewGenAIClient builds a Gemini API client. baseURL is only set to point the
// client at a test server.
func NewGenAIClient(ctx context.Context, apiKey, model, baseURL string) (*GenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GENAI_API_KEY not configured")
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimRight(baseURL, "/") + "/"}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GenAIClient{client: client, model: model}, nil
}

func (c *GenAIClient) GenerateBlurb(ctx context.Context, rec CourseRecommendation, score QuizScore, lang string) (string, error) {
	language := "English"
	if lang == "hi" {
		language = "Hindi"
	}
	prompt := fmt.Sprintf(
		"A student took a career quiz for aviation and hospitality courses. Their scores were %v and the best match is %q (%s). "+
			"Write two encouraging sentences in %s explaining why this course suits them. Do not use markdown.",
		score.Totals, rec.Title, rec.Description, language)

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("genai request failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("genai returned empty text")
	}
	return text, nil
}

// QuizOutcome is what the career navigator returns to the visitor
type QuizOutcome struct {
	QuizScore
	Recommendation CourseRecommendation `json:"recommendation"`
	Blurb          string               `json:"blurb"`
	AIGenerated    bool                 `json:"ai_generated"`
}

// QuizService scores answers, fetches a blurb and records the result
type QuizService struct {
	repo  LeadRepository
	blurb BlurbGenerator
}

// NewQuizService accepts a nil generator, in which case the fallback blurb is always used
func NewQuizService(repo LeadRepository, blurb BlurbGenerator) *QuizService {
	return &QuizService{repo: repo, blurb: blurb}
}

func (s *QuizService) Complete(ctx context.Context, answers []string, lang string) (*QuizOutcome, error) {
	score, err := ScoreQuiz(answers)
	if err != nil {
		return nil, err
	}

	rec, _ := RecommendationFor(score.TopCategory)
	outcome := &QuizOutcome{
		QuizScore:      score,
		Recommendation: rec,
		Blurb:          i18n.Translate(lang, "quiz.fallback_blurb"),
	}

	if s.blurb != nil {
		text, err := s.blurb.GenerateBlurb(ctx, rec, score, lang)
		if err != nil {
			logger.L().Warn("Quiz blurb generation failed, using fallback", zap.Error(err))
		} else {
			outcome.Blurb = text
			outcome.AIGenerated = true
		}
	}

	quizCompletionsTotal.WithLabelValues(score.TopCategory).Inc()

	if s.repo != nil {
		if err := s.repo.CreateQuizResult(ctx, newQuizResult(answers, score, rec, lang)); err != nil {
			logger.L().Warn("Failed to save quiz result", zap.Error(err))
		}
	}

	return outcome, nil
}

func newQuizResult(answers []string, score QuizScore, rec CourseRecommendation, lang string) *models.CareerQuizResult {
	normalized := make([]string, len(answers))
	for i, a := range answers {
		normalized[i] = strings.ToUpper(strings.TrimSpace(a))
	}
	totals, _ := json.Marshal(score.Totals)
	return &models.CareerQuizResult{
		Answers:     strings.Join(normalized, ","),
		Totals:      string(totals),
		TopCategory: score.TopCategory,
		CourseRoute: rec.Route,
		Locale:      lang,
	}
}
