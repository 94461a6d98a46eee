// file: internal/server/review_service.go
// version: 1.2.0
// guid: 2d7e9b14-5a3c-4f68-8e0b-6c1d4a9f2b87

package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mhagen/dealerfinder/internal/database"
	servermiddleware "github.com/mhagen/dealerfinder/internal/server/middleware"
)

func (s *Server) listDealerReviews(c *gin.Context) {
	store, ok := requireStore(c)
	if !ok {
		return
	}
	dealerID := strings.TrimSpace(c.Param("id"))

	dealer, err := store.GetDealerByID(dealerID)
	if err != nil {
		RespondWithInternalError(c, "failed to load dealer")
		return
	}
	if dealer == nil {
		RespondWithNotFound(c, "dealer", dealerID)
		return
	}

	reviews, err := store.GetReviewsByDealerID(dealerID)
	if err != nil {
		RespondWithInternalError(c, "failed to list reviews")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dealer_id": dealerID,
		"reviews":   reviews,
		"total":     len(reviews),
	})
}

func (s *Server) createDealerReview(c *gin.Context) {
	store, ok := requireStore(c)
	if !ok {
		return
	}
	dealerID := strings.TrimSpace(c.Param("id"))

	dealer, err := store.GetDealerByID(dealerID)
	if err != nil {
		RespondWithInternalError(c, "failed to load dealer")
		return
	}
	if dealer == nil {
		RespondWithNotFound(c, "dealer", dealerID)
		return
	}

	var req struct {
		Rating int    `json:"rating"`
		Title  string `json:"title"`
		Body   string `json:"body"`
		Author string `json:"author"`
	}
	if HandleBindError(c, c.ShouldBindJSON(&req)) {
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		RespondWithValidationError(c, "rating", "must be between 1 and 5")
		return
	}
	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" {
		RespondWithValidationError(c, "body", "must not be empty")
		return
	}

	// Prefer the authenticated identity over a client-supplied author name.
	author := strings.TrimSpace(req.Author)
	if user, ok := servermiddleware.CurrentUser(c); ok {
		author = user.Username
	}
	if author == "" {
		author = "anonymous"
	}

	created, err := store.CreateReview(&database.Review{
		DealerID: dealerID,
		Author:   author,
		Rating:   req.Rating,
		Title:    strings.TrimSpace(req.Title),
		Body:     req.Body,
	})
	if err != nil {
		RespondWithInternalError(c, "failed to create review")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) deleteReview(c *gin.Context) {
	store, ok := requireStore(c)
	if !ok {
		return
	}
	id := strings.TrimSpace(c.Param("id"))

	review, err := store.GetReviewByID(id)
	if err != nil {
		RespondWithInternalError(c, "failed to load review")
		return
	}
	if review == nil {
		RespondWithNotFound(c, "review", id)
		return
	}

	// Only the review's author or an admin may delete it. When auth is
	// disabled there is no identity to check, so the delete is allowed.
	if user, ok := servermiddleware.CurrentUser(c); ok {
		if review.Author != user.Username && !user.IsAdmin() {
			RespondWithForbidden(c, "only the author or an admin can delete a review")
			return
		}
	}

	if err := store.DeleteReview(id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			RespondWithNotFound(c, "review", id)
			return
		}
		RespondWithInternalError(c, "failed to delete review")
		return
	}
	c.Status(http.StatusNoContent)
}
