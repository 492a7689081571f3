package server

import (
	"context"
	"embed"
	"html/template"
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"voy.com/portfolio/internal/config"
	portfolioHttp "voy.com/portfolio/internal/modules/portfolio/delivery/http"
	portfolioRepo "voy.com/portfolio/internal/modules/portfolio/repository"
	portfolioService "voy.com/portfolio/internal/modules/portfolio/service"
	searchService "voy.com/portfolio/internal/modules/search/service"
	"voy.com/portfolio/pkg/storage"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	repo := portfolioRepo.NewRepository(db)

	images, err := storage.NewCloudinaryResolver()
	if err != nil {
		log.Printf("cloudinary not configured, serving stored image references as-is: %v", err)
		images = storage.PassthroughResolver{}
	}

	var searchSvc searchService.SearchService
	if cfg.MeiliSearchHost != "" {
		host := cfg.MeiliSearchHost
		if !strings.HasPrefix(host, "http") {
			host = "http://" + host + ":7700"
		}
		meiliClient := meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		searchSvc = searchService.NewMeiliSearchService(meiliClient)
	}

	portfolioSvc := portfolioService.NewService(repo, images, searchSvc, redisClient, cfg.SiteBaseURL, cfg.QueryCacheTTL)
	portfolioHandler := portfolioHttp.NewPortfolioHandler(portfolioSvc, cfg)

	// Keep the search index in step with the store on boot.
	if searchSvc != nil {
		go reindexProjects(context.Background(), repo, searchSvc)
	}

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.tmpl")))

	api := router.Group("/api")
	api.GET("/portfolio", portfolioHandler.GetPortfolio)

	router.GET("/portfolio", portfolioHandler.RenderPage)

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func reindexProjects(ctx context.Context, repo portfolioRepo.Repository, searchSvc searchService.SearchService) {
	projects, err := repo.AllPublished(ctx)
	if err != nil {
		log.Printf("startup reindex skipped, repository unavailable: %v", err)
		return
	}

	for _, project := range projects {
		if err := searchSvc.IndexProject(project); err != nil {
			log.Printf("failed to index project %d: %v", project.ID, err)
		}
	}
	log.Printf("startup reindex completed, %d projects", len(projects))
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
