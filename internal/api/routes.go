// Package api exposes the stored intelligence over HTTP.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"prism-cti/internal/store"
)

// Config defines server dependencies.
type Config struct {
	DBPath         string
	SilentDB       bool
	AllowedOrigins []string
}

// Server wires HTTP handlers with persistence.
type Server struct {
	db             *store.Database
	allowedOrigins []string
}

// NewServer constructs the API server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.DBPath == "" {
		return nil, errors.New("db path required")
	}
	db, err := store.Open(cfg.DBPath, cfg.SilentDB)
	if err != nil {
		return nil, err
	}
	return &Server{db: db, allowedOrigins: cfg.AllowedOrigins}, nil
}

// Close releases the underlying database handle.
func (s *Server) Close() error {
	return s.db.Close()
}

// Router configures gin routes.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/api/healthz", s.handleHealth)

	api := r.Group("/api")
	{
		api.GET("/articles", s.handleListArticles)
		api.GET("/articles/:id", s.handleGetArticle)
		api.GET("/iocs", s.handleListIOCs)
		api.GET("/digests", s.handleListDigests)
		api.GET("/digests/latest", s.handleLatestDigest)
	}

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListArticles(c *gin.Context) {
	offset, limit := pageParams(c, 50)

	opts := store.ArticleQuery{
		Query:  strings.TrimSpace(c.Query("q")),
		Source: strings.TrimSpace(c.Query("source")),
		Offset: offset,
		Limit:  limit,
	}
	if value := strings.TrimSpace(c.Query("summarized")); value != "" {
		summarized, err := strconv.ParseBool(value)
		if err != nil {
			s.renderError(c, http.StatusBadRequest, fmt.Errorf("invalid summarized: %s", value))
			return
		}
		opts.Summarized = &summarized
	}

	rows, total, err := s.db.ListArticles(opts)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]ArticleDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, ArticleFromModel(row))
	}
	c.JSON(http.StatusOK, ArticlesResponse{Items: dtos, Total: total})
}

func (s *Server) handleGetArticle(c *gin.Context) {
	articleID, err := parseUintParam(c.Param("id"))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}

	article, err := s.db.GetArticle(articleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.renderError(c, http.StatusNotFound, fmt.Errorf("article %d not found", articleID))
		} else {
			s.renderError(c, http.StatusInternalServerError, err)
		}
		return
	}

	iocs, err := s.db.IOCsForArticle(article.ID)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	tags, err := s.db.TagsForArticle(article.ID)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	dto := ArticleDetailDTO{
		ArticleDTO: ArticleFromModel(*article),
		Content:    article.Content,
		Summary:    article.Summary,
		IOCs:       make([]IOCDTO, 0, len(iocs)),
		Tags:       tags,
	}
	for _, ioc := range iocs {
		dto.IOCs = append(dto.IOCs, IOCFromModel(ioc))
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}
	c.JSON(http.StatusOK, dto)
}

func (s *Server) handleListIOCs(c *gin.Context) {
	offset, limit := pageParams(c, 100)
	iocType := strings.TrimSpace(c.Query("type"))

	rows, total, err := s.db.ListIOCs(iocType, offset, limit)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]IOCDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, IOCFromModel(row))
	}
	c.JSON(http.StatusOK, IOCsResponse{Items: dtos, Total: total})
}

func (s *Server) handleListDigests(c *gin.Context) {
	offset, limit := pageParams(c, 25)

	rows, total, err := s.db.ListDigests(offset, limit)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]DigestDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, DigestFromModel(row))
	}
	c.JSON(http.StatusOK, DigestsResponse{Items: dtos, Total: total})
}

func (s *Server) handleLatestDigest(c *gin.Context) {
	record, err := s.db.LatestDigest()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.renderError(c, http.StatusNotFound, errors.New("no digest generated yet"))
		} else {
			s.renderError(c, http.StatusInternalServerError, err)
		}
		return
	}
	c.JSON(http.StatusOK, DigestFromModel(*record))
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

func pageParams(c *gin.Context, defaultSize int) (offset, limit int) {
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 0 {
		page = 0
	}
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	if pageSize <= 0 {
		pageSize = defaultSize
	}
	return page * pageSize, pageSize
}

func parseUintParam(value string) (uint, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, errors.New("identifier is required")
	}
	parsed, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid identifier: %w", err)
	}
	if parsed == 0 {
		return 0, errors.New("identifier must be greater than zero")
	}
	return uint(parsed), nil
}
