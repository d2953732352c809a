package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sujalbistaa/mentorq/internal/config"
	"github.com/sujalbistaa/mentorq/internal/docstore"
	api "github.com/sujalbistaa/mentorq/internal/http"
)

// doJSONFrom is doJSON with a caller address, so consecutive writes do
// not trip the per-IP rate limiter.
func doJSONFrom(router *gin.Engine, method, path, token, fromIP string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", fromIP)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

var _ = Describe("SetupRoutes", func() {
	newRouter := func(dsn string, authDisabled bool) *gin.Engine {
		gin.SetMode(gin.TestMode)
		store, err := docstore.Init(dsn)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { _ = store.Close(context.Background()) })

		cfg := &config.Config{
			JWTSecret:           testSecret,
			QuestionsCollection: "questions",
			ResponsesCollection: "questions-responses",
			CORSOrigins:         []string{"*"},
			AuthDisabled:        authDisabled,
		}
		router := gin.New()
		api.SetupRoutes(router, store, cfg)
		return router
	}

	It("serves the health check without authentication", func() {
		router := newRouter("sqlite://file:health?mode=memory&cache=shared", false)

		w := doJSON(router, http.MethodGet, "/api/health", "", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"health": "OK"}`))
	})

	It("round-trips a question and its response", func() {
		router := newRouter("sqlite://file:roundtrip?mode=memory&cache=shared", false)

		// Student A asks.
		w := doJSONFrom(router, http.MethodPost, "/api/questions", signToken("studentA", api.RoleStudent), "10.0.0.1", gin.H{
			"title":   "How do I size a buffer?",
			"content": "Context here",
		})
		Expect(w.Code).To(Equal(http.StatusCreated))
		var created map[string]string
		Expect(json.Unmarshal(w.Body.Bytes(), &created)).To(Succeed())
		questionID := created["id"]
		Expect(questionID).NotTo(BeEmpty())

		// The question reads back with the author recorded.
		w = doJSON(router, http.MethodGet, "/api/questions/"+questionID, signToken("studentA", api.RoleStudent), nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var doc map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &doc)).To(Succeed())
		Expect(doc["title"]).To(Equal("How do I size a buffer?"))
		Expect(doc["content"]).To(Equal("Context here"))
		Expect(doc["authorID"]).To(Equal("studentA"))

		// It shows up in the id listing.
		w = doJSON(router, http.MethodGet, "/api/questions", signToken("studentA", api.RoleStudent), nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var ids []string
		Expect(json.Unmarshal(w.Body.Bytes(), &ids)).To(Succeed())
		Expect(ids).To(ContainElement(questionID))

		// Mentor B answers.
		w = doJSONFrom(router, http.MethodPost, "/api/questions/"+questionID+"/responses", signToken("mentorB", api.RoleMentor), "10.0.0.2", gin.H{
			"message": "Use capacity planning...",
		})
		Expect(w.Code).To(Equal(http.StatusCreated))

		// The response lists under the question.
		w = doJSON(router, http.MethodGet, "/api/questions/"+questionID+"/responses", signToken("studentA", api.RoleStudent), nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var responses []map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &responses)).To(Succeed())
		Expect(responses).To(HaveLen(1))
		Expect(responses[0]["authorID"]).To(Equal("mentorB"))
		Expect(responses[0]["message"]).To(Equal("Use capacity planning..."))
		Expect(responses[0]["questionID"]).To(Equal(questionID))

		// A bogus question id still lists as empty, not 404.
		w = doJSON(router, http.MethodGet, "/api/questions/nonexistent-id/responses", signToken("studentA", api.RoleStudent), nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON("[]"))
	})

	It("returns 404 for an unknown question id", func() {
		router := newRouter("sqlite://file:missing?mode=memory&cache=shared", false)

		w := doJSON(router, http.MethodGet, "/api/questions/unknown", signToken("studentA", api.RoleStudent), nil)

		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("records Anonymous authors when auth is disabled", func() {
		router := newRouter("sqlite://file:anon?mode=memory&cache=shared", true)

		w := doJSONFrom(router, http.MethodPost, "/api/questions", "", "10.0.0.3", gin.H{
			"title":   "T",
			"content": "C",
		})
		Expect(w.Code).To(Equal(http.StatusCreated))
		var created map[string]string
		Expect(json.Unmarshal(w.Body.Bytes(), &created)).To(Succeed())

		w = doJSON(router, http.MethodGet, "/api/questions/"+created["id"], "", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var doc map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &doc)).To(Succeed())
		Expect(doc["authorID"]).To(Equal("Anonymous"))
	})
})
