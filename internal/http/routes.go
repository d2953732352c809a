package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/sujalbistaa/mentorq/internal/config"
	"github.com/sujalbistaa/mentorq/internal/docstore"
)

// SetupRoutes configures all application routes and middleware.
func SetupRoutes(router *gin.Engine, store docstore.DocumentStore, cfg *config.Config) {

	// --- Dependencies ---
	env := &Env{
		Store:     store,
		Questions: cfg.QuestionsCollection,
		Responses: cfg.ResponsesCollection,
	}

	// --- Middleware ---

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// --- Rate Limiter Setup ---
	limiter := NewIPRateLimiter(rate.Limit(rateLimitRPS), rateLimitBurst)
	go func() {
		for {
			time.Sleep(10 * time.Minute)
			limiter.mu.Lock()
			for ip, v := range limiter.visitors {
				// Keep limiters that are still saturated; an idle one
				// is old and can go.
				if v.Allow() {
					delete(limiter.visitors, ip)
				}
			}
			limiter.mu.Unlock()
		}
	}()

	// --- API Routes ---

	// Health stays outside the authenticated group.
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"health": "OK"})
	})

	api := router.Group("/api")
	if !cfg.AuthDisabled {
		api.Use(JWTAuthMiddleware(cfg.JWTSecret))
	}

	writeLimit := RateLimitMiddleware(limiter)
	studentGate := RequireRole(RoleStudent, studentsOnlyReason)
	mentorGate := RequireRole(RoleMentor, mentorsOnlyReason)
	if cfg.AuthDisabled {
		// First-generation behavior: no principal, writes record the
		// author as Anonymous.
		studentGate = func(c *gin.Context) { c.Next() }
		mentorGate = func(c *gin.Context) { c.Next() }
	}

	{
		api.GET("/questions", env.ListQuestions)
		api.POST("/questions", writeLimit, studentGate, env.CreateQuestion)
		api.GET("/questions/:questionID", env.GetQuestion)
		api.GET("/questions/:questionID/responses", env.ListResponses)
		api.POST("/questions/:questionID/responses", writeLimit, mentorGate, env.CreateResponse)
	}
}
