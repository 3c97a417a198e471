package handlers

import (
	"agencysite/database"
	"agencysite/models"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LeadReader is implemented by *database.DB.
type LeadReader interface {
	QueryLeads(ctx context.Context, params models.LeadQueryParams) ([]models.Lead, int64, error)
	GetLead(ctx context.Context, id uuid.UUID) (*models.Lead, error)
}

// ListLeads handles GET /api/leads.
func ListLeads(store LeadReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params models.LeadQueryParams
		if err := c.ShouldBindQuery(&params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		leads, total, err := store.QueryLeads(c.Request.Context(), params)
		if err != nil {
			_ = c.Error(err)
			if errors.Is(err, database.ErrInvalidQuery) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query leads"})
			return
		}

		c.JSON(http.StatusOK, models.LeadsResponse{
			Leads:   leads,
			Total:   total,
			Limit:   params.Limit,
			Offset:  params.Offset,
			HasMore: int64(params.Offset+len(leads)) < total,
		})
	}
}

// GetLead handles GET /api/leads/:id.
func GetLead(store LeadReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lead id"})
			return
		}

		lead, err := store.GetLead(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, database.ErrLeadNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
				return
			}
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get lead"})
			return
		}

		c.JSON(http.StatusOK, lead)
	}
}
