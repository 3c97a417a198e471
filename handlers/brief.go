package handlers

import (
	"agencysite/intake"
	"agencysite/models"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// maxBriefBytes caps the JSON body of a submission.
const maxBriefBytes = 64 << 10

const (
	msgSubmitted          = "Thank you! Your project brief has been submitted successfully. We'll be in touch within 24 hours."
	msgEndpointWorking    = "Project brief API endpoint is working"
	errMissingFields      = "Missing required fields"
	errInvalidEmail       = "Invalid email format"
	errInvalidBody        = "Invalid request body"
	errBodyTooLarge       = "Request body too large"
	errNotificationFailed = "Failed to send notification"
	errInternal           = "Internal server error"
)

// BriefSubmitter is implemented by *intake.Service.
type BriefSubmitter interface {
	Submit(ctx context.Context, sub models.ProjectBriefSubmission) (intake.Receipt, error)
}

// SubmitBrief handles POST /api/project-brief.
func SubmitBrief(svc BriefSubmitter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBriefBytes)

		var sub models.ProjectBriefSubmission
		if err := c.ShouldBindJSON(&sub); err != nil {
			_ = c.Error(err)
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, failure(errBodyTooLarge))
				return
			}
			c.JSON(http.StatusBadRequest, failure(errInvalidBody))
			return
		}

		receipt, err := svc.Submit(c.Request.Context(), sub)
		if err != nil {
			_ = c.Error(err)
			status, message := classify(err)
			c.JSON(status, failure(message))
			return
		}

		c.JSON(http.StatusOK, models.BriefResponse{
			Success: true,
			Message: msgSubmitted,
			Data:    &models.BriefData{ID: receipt.ID},
		})
	}
}

// BriefStatus handles GET /api/project-brief.
func BriefStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": msgEndpointWorking})
}

func classify(err error) (int, string) {
	var notifyErr *intake.NotifyError
	switch {
	case errors.Is(err, intake.ErrMissingFields):
		return http.StatusBadRequest, errMissingFields
	case errors.Is(err, intake.ErrInvalidEmail):
		return http.StatusBadRequest, errInvalidEmail
	case errors.Is(err, intake.ErrInvalidBody):
		return http.StatusBadRequest, errInvalidBody
	case errors.As(err, &notifyErr):
		return http.StatusInternalServerError, errNotificationFailed
	default:
		return http.StatusInternalServerError, errInternal
	}
}

func failure(message string) models.BriefResponse {
	return models.BriefResponse{Success: false, Error: message}
}
