// file: internal/server/dealer_service.go
// version: 1.3.0
// guid: 9a1f3c5e-7b2d-4e80-b6c4-1d8f0a2e7c53

package server

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mhagen/dealerfinder/internal/database"
)

var statePattern = regexp.MustCompile(`^[A-Za-z]{2}$`)

type dealerRequest struct {
	Name   string   `json:"name"`
	City   string   `json:"city"`
	State  string   `json:"state"`
	Postal string   `json:"postal"`
	Phone  string   `json:"phone"`
	Brands []string `json:"brands"`
}

func (r *dealerRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.City = strings.TrimSpace(r.City)
	r.State = strings.ToUpper(strings.TrimSpace(r.State))
	r.Postal = strings.TrimSpace(r.Postal)
	r.Phone = strings.TrimSpace(r.Phone)
	brands := make([]string, 0, len(r.Brands))
	for _, brand := range r.Brands {
		brand = strings.TrimSpace(brand)
		if brand != "" {
			brands = append(brands, brand)
		}
	}
	r.Brands = brands
}

func (r *dealerRequest) validate(c *gin.Context) bool {
	if r.Name == "" {
		RespondWithValidationError(c, "name", "must not be empty")
		return false
	}
	if r.State != "" && !statePattern.MatchString(r.State) {
		RespondWithValidationError(c, "state", "must be a two-letter code")
		return false
	}
	return true
}

func (s *Server) listDealers(c *gin.Context) {
	store, ok := requireStore(c)
	if !ok {
		return
	}

	pagination := ParsePaginationParams(c)
	filter := database.DealerFilter{
		State:  strings.ToUpper(strings.TrimSpace(c.Query("state"))),
		Postal: strings.TrimSpace(c.Query("postal")),
		Brand:  strings.TrimSpace(c.Query("brand")),
		Limit:  pagination.Limit,
		Offset: pagination.Offset,
	}

	dealers, err := store.FilterDealers(filter)
	if err != nil {
		RespondWithInternalError(c, "failed to list dealers")
		return
	}
	total, err := store.CountDealers()
	if err != nil {
		RespondWithInternalError(c, "failed to count dealers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dealers": dealers,
		"total":   total,
		"limit":   pagination.Limit,
		"offset":  pagination.Offset,
	})
}

func (s *Server) getDealer(c *gin.Context) {
	store, ok := requireStore(c)
	if !ok {
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	dealer, err := store.GetDealerByID(id)
	if err != nil {
		RespondWithInternalError(c, "failed to load dealer")
		return
	}
	if dealer == nil {
		RespondWithNotFound(c, "dealer", id)
		return
	}
	c.JSON(http.StatusOK, dealer)
}

func (s *Server) createDealer(c *gin.Context) {
	store, ok := requireStore(c)
	if !ok {
		return
	}

	var req dealerRequest
	if HandleBindError(c, c.ShouldBindJSON(&req)) {
		return
	}
	req.normalize()
	if !req.validate(c) {
		return
	}

	created, err := store.CreateDealer(&database.Dealer{
		Name:   req.Name,
		City:   req.City,
		State:  req.State,
		Postal: req.Postal,
		Phone:  req.Phone,
		Brands: req.Brands,
	})
	if err != nil {
		RespondWithInternalError(c, "failed to create dealer")
		return
	}
	s.suggestCache.InvalidateAll()
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateDealer(c *gin.Context) {
	store, ok := requireStore(c)
	if !ok {
		return
	}
	id := strings.TrimSpace(c.Param("id"))

	var req dealerRequest
	if HandleBindError(c, c.ShouldBindJSON(&req)) {
		return
	}
	req.normalize()
	if !req.validate(c) {
		return
	}

	updated, err := store.UpdateDealer(id, &database.Dealer{
		Name:   req.Name,
		City:   req.City,
		State:  req.State,
		Postal: req.Postal,
		Phone:  req.Phone,
		Brands: req.Brands,
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			RespondWithNotFound(c, "dealer", id)
			return
		}
		RespondWithInternalError(c, "failed to update dealer")
		return
	}
	s.suggestCache.InvalidateAll()
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteDealer(c *gin.Context) {
	store, ok := requireStore(c)
	if !ok {
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if err := store.DeleteDealer(id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			RespondWithNotFound(c, "dealer", id)
			return
		}
		RespondWithInternalError(c, "failed to delete dealer")
		return
	}
	s.suggestCache.InvalidateAll()
	c.Status(http.StatusNoContent)
}
