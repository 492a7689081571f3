package handler

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"voy.com/portfolio/internal/client"
	"voy.com/portfolio/internal/config"
	portfolioDto "voy.com/portfolio/internal/modules/portfolio/dto"
	portfolio "voy.com/portfolio/internal/modules/portfolio/service"
	"voy.com/portfolio/pkg/apperror"
	"voy.com/portfolio/pkg/response"
	"voy.com/portfolio/pkg/validator"
)

// placeholderImage is a 1x1 transparent PNG shown while real images load or
// when a project has no featured image.
const placeholderImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR4nGNgYAAAAAMAASsJTYQAAAAASUVORK5CYII="

type PortfolioHandler struct {
	service portfolio.Service
	cfg     *config.Config
}

func NewPortfolioHandler(service portfolio.Service, cfg *config.Config) *PortfolioHandler {
	return &PortfolioHandler{service: service, cfg: cfg}
}

// GetPortfolio is the network form of the catalog query: one GET returns the
// page of projects, the in-use categories and the pagination totals together.
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	var req portfolioDto.PortfolioQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	// Set defaults
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PerPage == 0 {
		req.PerPage = portfolio.DefaultPageSize
	}

	state, err := h.service.Resolve(c.Request.Context(), req.Category, req.Search, req.Page, req.PerPage)
	if err != nil && !errors.Is(err, apperror.ErrUnresolvableCategorySlug) {
		response.ResponseError(c, err)
		return
	}

	result, err := h.service.Execute(c.Request.Context(), state)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RenderPage serves the server-rendered catalog: the first paint plus an
// embedded boot payload the client controller treats as a cache entry for the
// decoded initial state.
func (h *PortfolioHandler) RenderPage(c *gin.Context) {
	bootCfg := client.BootConfig{
		EnableSearch:    h.cfg.EnableSearch,
		EnableFilters:   h.cfg.EnableFilters,
		EnablePaginator: h.cfg.EnablePaginator,
		ItemsPerPage:    h.cfg.ItemsPerPage,
	}

	urlState := client.DecodeURLState(c.Request.URL.RawQuery, bootCfg)

	state, err := h.service.Resolve(c.Request.Context(), urlState.Category, urlState.Search, urlState.Page, bootCfg.ItemsPerPage)
	if err != nil && !errors.Is(err, apperror.ErrUnresolvableCategorySlug) {
		response.ResponseError(c, err)
		return
	}

	result, err := h.service.Execute(c.Request.Context(), state)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	boot := client.BootPayload{
		Config: bootCfg,
		Initial: client.BootInitial{
			QueryResult:    *result,
			CurrentPage:    state.Page,
			ActiveCategory: state.CategoryID,
			Search:         state.Search,
		},
		APIBase:     "/api/portfolio",
		Placeholder: placeholderImage,
	}

	payload, err := json.Marshal(boot)
	if err != nil {
		response.ResponseError(c, apperror.ErrInternal)
		return
	}

	instanceID := "voy-portfolio-" + uuid.NewString()

	c.HTML(http.StatusOK, "portfolio.tmpl", gin.H{
		"InstanceID": instanceID,
		"Boot":       template.JS(payload),
		"Result":     result,
		"State":      state,
	})
}
