package dto

// PortfolioQuery binds the catalog query parameters. Page and PerPage are
// clamped by the resolver, not rejected here.
type PortfolioQuery struct {
	Page     int    `form:"page"`
	PerPage  int    `form:"per_page"`
	Search   string `form:"search" binding:"omitempty,max=200"`
	Category string `form:"category" binding:"omitempty,max=100"`
}
