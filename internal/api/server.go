// Package api exposes the matching service over HTTP. Callers are
// authenticated upstream; the gateway forwards identity in x-* headers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/khrees2412/talentmatch/internal/catalog"
	"github.com/khrees2412/talentmatch/internal/matcher"
	"github.com/khrees2412/talentmatch/internal/matching"
	"github.com/khrees2412/talentmatch/pkg/models"
	"go.uber.org/zap"
)

// Identity headers set by the gateway.
const (
	HeaderUserID      = "x-user-id"
	HeaderRole        = "x-role"
	HeaderCandidateID = "x-candidate-id"
	HeaderCompanyID   = "x-company-id"
)

const principalKey = "principal"

var errUnauthorized = errors.New("missing or invalid identity headers")

// Server serves the matching API.
type Server struct {
	svc    *matching.Service
	logger *zap.Logger
	engine *gin.Engine
}

// New builds the router. origins feeds the CORS policy; empty allows all.
func New(svc *matching.Service, logger *zap.Logger, origins []string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{svc: svc, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	corsConfig := cors.DefaultConfig()
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsConfig.AllowOrigins = origins
	corsConfig.AllowWildcard = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type",
		HeaderUserID, HeaderRole, HeaderCandidateID, HeaderCompanyID}
	r.Use(cors.New(corsConfig))

	r.GET("/health", s.health())
	r.GET("/catalogs", s.catalogs())

	auth := r.Group("/", s.identify())
	auth.POST("/swipes", s.swipe())
	auth.GET("/matches", s.listMatches())
	auth.POST("/matches/:id/unlike", s.unlike())
	auth.POST("/matches/:id/like", s.actOnMatch(models.ActionLike))
	auth.POST("/matches/:id/ask-to-apply", s.actOnMatch(models.ActionAskToApply))
	auth.GET("/stats", s.stats())
	auth.GET("/recommendations/postings/:id", s.recommendProfiles())
	auth.GET("/recommendations/profiles/:id", s.recommendPostings())
	auth.GET("/score", s.score())
	auth.GET("/notifications", s.notifications())
	auth.GET("/notifications/unread-count", s.unreadCount())
	auth.PUT("/notifications/read-all", s.markAllRead())
	auth.PUT("/notifications/:id/read", s.markRead())

	s.engine = r
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func erro(err error) gin.H {
	return gin.H{"error": err.Error()}
}

// fail maps service errors onto status codes.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, matching.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, matching.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, matching.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, errUnauthorized):
		status = http.StatusUnauthorized
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.AbortWithStatusJSON(status, gin.H{"error": "internal error"})
		return
	}
	c.AbortWithStatusJSON(status, erro(err))
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// identify resolves the principal from the gateway headers.
func (s *Server) identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := principalFromHeaders(c)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

func principalFromHeaders(c *gin.Context) (matching.Principal, error) {
	var p matching.Principal

	userID, err := strconv.ParseInt(c.GetHeader(HeaderUserID), 10, 64)
	if err != nil || userID <= 0 {
		return p, errUnauthorized
	}
	p.UserID = userID
	p.Role = models.Actor(c.GetHeader(HeaderRole))

	switch p.Role {
	case models.ActorCandidate:
		p.CandidateID, err = strconv.ParseInt(c.GetHeader(HeaderCandidateID), 10, 64)
	case models.ActorRecruiter:
		p.CompanyID, err = strconv.ParseInt(c.GetHeader(HeaderCompanyID), 10, 64)
	default:
		return p, errUnauthorized
	}
	if err != nil {
		return p, errUnauthorized
	}
	return p, nil
}

func principal(c *gin.Context) matching.Principal {
	return c.MustGet(principalKey).(matching.Principal)
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errors.Join(matching.ErrInvalidArgument, err)
	}
	return id, nil
}

func (s *Server) health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func (s *Server) catalogs() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, catalog.All())
	}
}

func (s *Server) swipe() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req matching.SwipeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, erro(err))
			return
		}
		res, err := s.svc.RecordSwipe(c.Request.Context(), principal(c), req)
		if err != nil {
			s.fail(c, err)
			return
		}
		status := http.StatusCreated
		if !res.Created {
			status = http.StatusOK
		}
		c.JSON(status, res)
	}
}

func (s *Server) listMatches() gin.HandlerFunc {
	return func(c *gin.Context) {
		mutual, _ := strconv.ParseBool(c.Query("mutual"))
		matches, err := s.svc.ListMatches(c.Request.Context(), principal(c), mutual)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, matches)
	}
}

func (s *Server) unlike() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			s.fail(c, err)
			return
		}
		m, err := s.svc.Unlike(c.Request.Context(), principal(c), id)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"match": m, "state": m.State()})
	}
}

func (s *Server) actOnMatch(action models.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			s.fail(c, err)
			return
		}
		res, err := s.svc.ActOnMatch(c.Request.Context(), principal(c), id, action)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func (s *Server) stats() gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := s.svc.PostingStats(c.Request.Context(), principal(c))
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

func (s *Server) recommendProfiles() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			s.fail(c, err)
			return
		}
		recs, err := s.svc.RecommendProfiles(c.Request.Context(), principal(c), id)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, recs)
	}
}

func (s *Server) recommendPostings() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			s.fail(c, err)
			return
		}
		recs, err := s.svc.RecommendPostings(c.Request.Context(), principal(c), id)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, recs)
	}
}

func (s *Server) score() gin.HandlerFunc {
	type scoreQuery struct {
		PostingID int64  `form:"posting_id" binding:"required"`
		ProfileID int64  `form:"profile_id" binding:"required"`
		View      string `form:"view"`
	}

	return func(c *gin.Context) {
		var q scoreQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, erro(err))
			return
		}
		view := matcher.RecruiterView
		if q.View == matcher.CandidateView.Name {
			view = matcher.CandidateView
		}
		res, err := s.svc.ScorePair(c.Request.Context(), q.PostingID, q.ProfileID, view)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"view": view.Name, "score": res.Total, "breakdown": res.Breakdown})
	}
}

func (s *Server) notifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		unread, _ := strconv.ParseBool(c.Query("unread"))
		list, err := s.svc.Notifications(c.Request.Context(), principal(c), unread)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func (s *Server) unreadCount() gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := s.svc.UnreadCount(c.Request.Context(), principal(c))
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"unread": n})
	}
}

func (s *Server) markRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			s.fail(c, err)
			return
		}
		if err := s.svc.MarkRead(c.Request.Context(), principal(c), id); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func (s *Server) markAllRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := s.svc.MarkAllRead(c.Request.Context(), principal(c))
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated": n})
	}
}
