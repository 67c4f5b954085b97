package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"xdrive-logistics-api-server/internal/jobs"
	"xdrive-logistics-api-server/internal/models"
	"xdrive-logistics-api-server/internal/s3"
	"xdrive-logistics-api-server/internal/service"
	"xdrive-logistics-api-server/internal/store"
)

type JobHandler struct {
	Jobs       *service.JobService
	Store      store.Store
	S3Uploader *s3.Uploader
}

type AddressPayload struct {
	FullText  string  `json:"fullText" binding:"required"`
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
}

type CreateJobPayload struct {
	PickupAddress   AddressPayload      `json:"pickupAddress" binding:"required"`
	DeliveryAddress AddressPayload      `json:"deliveryAddress" binding:"required"`
	PickupWindow    string              `json:"pickupWindow"`
	DeliveryWindow  string              `json:"deliveryWindow"`
	Cargo           models.CargoDetails `json:"cargo" binding:"required"`
}

func (p AddressPayload) toModel() models.Address {
	return models.Address{FullText: p.FullText, Latitude: p.Latitude, Longitude: p.Longitude}
}

// CreateJob posts a new job into the marketplace.
func (h *JobHandler) CreateJob(c *gin.Context) {
	var payload CreateJobPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.Jobs.Post(c.Request.Context(), actorFromContext(c), service.PostJobInput{
		PickupAddress:   payload.PickupAddress.toModel(),
		DeliveryAddress: payload.DeliveryAddress.toModel(),
		PickupWindow:    payload.PickupWindow,
		DeliveryWindow:  payload.DeliveryWindow,
		Cargo:           payload.Cargo,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, job)
}

// ListJobs returns jobs in the caller's scope, optionally filtered by
// marketplace status (?status=open).
func (h *JobHandler) ListJobs(c *gin.Context) {
	status := jobs.MarketStatus(c.Query("status"))

	list, err := h.Jobs.List(c.Request.Context(), actorFromContext(c), status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetJob returns one job.
func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.Jobs.Get(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// CancelJob cancels a job that is still open for bidding.
func (h *JobHandler) CancelJob(c *gin.Context) {
	jobID := c.Param("id")
	if err := h.Jobs.CancelOpen(c.Request.Context(), actorFromContext(c), jobID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Job " + jobID + " cancelled"})
}

// ListOpenJobs is the carrier-facing marketplace board.
func (h *JobHandler) ListOpenJobs(c *gin.Context) {
	list, err := h.Jobs.OpenJobs(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// UploadPodPhoto stores a proof-of-delivery photo on S3 and attaches it
// to the job. Only the assigned driver can upload.
func (h *JobHandler) UploadPodPhoto(c *gin.Context) {
	jobID := c.Param("id")
	actor := actorFromContext(c)

	job, err := h.Store.FindJob(c.Request.Context(), jobID)
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve job"})
		}
		return
	}

	if job.AssignedDriverID != actor.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the assigned driver can upload delivery proof"})
		return
	}

	if h.S3Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "File storage is not configured"})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'photo' form file"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot read uploaded file"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	objectKey := fmt.Sprintf("pod/%s/%s%s", jobID, strings.ToUpper(uuid.New().String()[:8]), filepath.Ext(fileHeader.Filename))
	url, err := h.S3Uploader.UploadFile(c.Request.Context(), file, objectKey, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo", "details": err.Error()})
		return
	}

	photo := models.MediaPointer{
		ID:         objectKey,
		URL:        url,
		FileName:   fileHeader.Filename,
		FileType:   contentType,
		UploadedBy: actor.UserID,
		CreatedAt:  time.Now(),
	}
	if err := h.Store.AddPodPhoto(c.Request.Context(), jobID, photo); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Photo uploaded but failed to attach to job"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "photo": photo})
}
