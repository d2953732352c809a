package http

import (
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/sujalbistaa/mentorq/internal/docstore"
	"github.com/sujalbistaa/mentorq/internal/models"
)

// --- Configuration Constants ---
const (
	rateLimitRPS   = 1.0 / 3.0 // 1 request every 3 seconds
	rateLimitBurst = 1

	anonymousAuthor = "Anonymous"

	studentsOnlyReason = "Only Students can post questions"
	mentorsOnlyReason  = "Only Mentors can post responses to questions"
)

// --- Structs for request binding ---
type CreateQuestionInput struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}
type CreateResponseInput struct {
	Message string `json:"message" binding:"required"`
}

// --- Rate Limiter ---
type IPRateLimiter struct {
	visitors map[string]*rate.Limiter
	mu       sync.RWMutex
	rps      rate.Limit
	burst    int
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		visitors: make(map[string]*rate.Limiter),
		mu:       sync.RWMutex{},
		rps:      r,
		burst:    b,
	}
}
func (rl *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, exists := rl.visitors[ip]
	if !exists {
		limiter = rate.NewLimiter(rl.rps, rl.burst)
		rl.visitors[ip] = limiter
	}
	return limiter
}
func RateLimitMiddleware(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.GetLimiter(ip).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please wait."})
			return
		}
		c.Next()
	}
}

// --- Handlers ---

// Env carries the handler dependencies: the document store and the
// two collection names it writes to.
type Env struct {
	Store     docstore.DocumentStore
	Questions string
	Responses string
}

// CreateQuestion persists a new question for the calling student.
// Free-text fields are trimmed and bounded before they hit the store;
// the timestamp is assigned here, never taken from the client.
func (e *Env) CreateQuestion(c *gin.Context) {
	var input CreateQuestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	authorID := anonymousAuthor
	if p, ok := PrincipalFrom(c); ok {
		authorID = p.Username
	}

	id, err := e.Store.Add(c.Request.Context(), e.Questions, models.Question{
		AuthorID: authorID,
		Date:     time.Now().UnixMilli(),
		Title:    clean(input.Title),
		Content:  clean(input.Content),
	})
	if err != nil {
		log.Printf("Error creating question: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to create question"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// GetQuestion fetches one question by identifier.
func (e *Env) GetQuestion(c *gin.Context) {
	doc, err := e.Store.Get(c.Request.Context(), e.Questions, c.Param("questionID"))
	if errors.Is(err, docstore.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question Not Found"})
		return
	}
	if err != nil {
		log.Printf("Error fetching question: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to retrieve question"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

// ListQuestions returns the identifiers of every question, in store
// enumeration order.
func (e *Env) ListQuestions(c *gin.Context) {
	docs, err := e.Store.ListAll(c.Request.Context(), e.Questions)
	if err != nil {
		log.Printf("Error listing questions: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to retrieve questions"})
		return
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		if id, ok := doc["id"].(string); ok {
			ids = append(ids, id)
		}
	}
	c.JSON(http.StatusOK, ids)
}

// ListResponses returns every response referencing the question. A
// question with no responses (or an unknown identifier) yields an
// empty list, not a 404. Only the write path existence-checks the
// parent.
func (e *Env) ListResponses(c *gin.Context) {
	docs, err := e.Store.QueryByField(c.Request.Context(), e.Responses, "questionID", c.Param("questionID"))
	if err != nil {
		log.Printf("Error listing responses: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to retrieve responses"})
		return
	}

	if docs == nil {
		docs = []docstore.Document{}
	}
	c.JSON(http.StatusOK, docs)
}

// CreateResponse persists a mentor's response after confirming the
// referenced question exists. A missing question is a 404, a failing
// store lookup is a 400, and neither writes anything.
func (e *Env) CreateResponse(c *gin.Context) {
	questionID := c.Param("questionID")

	_, err := e.Store.Get(c.Request.Context(), e.Questions, questionID)
	if errors.Is(err, docstore.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question Not Found"})
		return
	}
	if err != nil {
		log.Printf("Error checking question %s: %v", questionID, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to retrieve question"})
		return
	}

	var input CreateResponseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	authorID := anonymousAuthor
	if p, ok := PrincipalFrom(c); ok {
		authorID = p.Username
	}

	id, err := e.Store.Add(c.Request.Context(), e.Responses, models.QuestionResponse{
		QuestionID: questionID,
		AuthorID:   authorID,
		Date:       time.Now().UnixMilli(),
		Message:    clean(input.Message),
	})
	if err != nil {
		log.Printf("Error creating response: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to create response"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}
