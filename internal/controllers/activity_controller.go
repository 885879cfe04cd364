package controllers

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"smart_tracker/internal/geo"
	"smart_tracker/internal/middleware"
	"smart_tracker/internal/models"
	"smart_tracker/internal/observability"
	"smart_tracker/internal/store"
)

const (
	defaultListLimit   = 50
	defaultRecentLimit = 5
)

// Event types published on every successful mutation.
const (
	EventCreated = "activity.created"
	EventUpdated = "activity.updated"
	EventDeleted = "activity.deleted"
)

// ActivityEvent is the change-feed message sent to realtime subscribers.
type ActivityEvent struct {
	Type string          `json:"type"`
	Data models.Activity `json:"data"`
	At   time.Time       `json:"at"`
}

// Publisher receives activity change events.
type Publisher interface {
	Publish(ActivityEvent)
}

// ActivityController serves the /api/activities endpoints.
type ActivityController struct {
	store     store.Store
	publisher Publisher
}

// NewActivityController wires a controller to its store. publisher may be nil.
func NewActivityController(s store.Store, publisher Publisher) *ActivityController {
	return &ActivityController{store: s, publisher: publisher}
}

// CreateActivity validates the body and stores a new activity.
func (ac *ActivityController) CreateActivity(c *gin.Context) {
	var input createActivityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ac.rejectBody(c, "create", err)
		return
	}
	if !input.complete() {
		observability.RecordOperation("create", observability.ResultInvalid)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	activity, err := ac.store.Insert(c.Request.Context(), input.toModel())
	if err != nil {
		ac.fail(c, "create", err)
		return
	}

	observability.RecordOperation("create", observability.ResultOK)
	ac.refreshGauge(c)
	ac.publish(EventCreated, activity)
	requestLog(c).WithField("activity_id", activity.ID).Info("Activity created")

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Activity created successfully",
		"data":    activity,
	})
}

// ListActivities returns a filtered, newest-first page with pagination metadata.
// An unusable limit falls back to 50 and an unusable skip to 0.
func (ac *ActivityController) ListActivities(c *gin.Context) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = defaultListLimit
	}
	skip, err := strconv.Atoi(c.Query("skip"))
	if err != nil || skip < 0 {
		skip = 0
	}

	page, err := ac.store.List(c.Request.Context(), store.ListQuery{
		Search: c.Query("search"),
		Limit:  limit,
		Skip:   skip,
	})
	if err != nil {
		ac.fail(c, "list", err)
		return
	}

	observability.RecordOperation("list", observability.ResultOK)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    page.Items,
		"pagination": gin.H{
			"total": page.Total,
			"limit": limit,
			"skip":  skip,
			"pages": int(math.Ceil(float64(page.Total) / float64(limit))),
		},
	})
}

func (ac *ActivityController) GetActivity(c *gin.Context) {
	activity, err := ac.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		ac.fail(c, "get", err)
		return
	}
	observability.RecordOperation("get", observability.ResultOK)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": activity})
}

// UpdateActivity applies a partial update. An empty body only bumps updatedAt.
func (ac *ActivityController) UpdateActivity(c *gin.Context) {
	var input updateActivityInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		ac.rejectBody(c, "update", err)
		return
	}

	id := c.Param("id")
	activity, err := ac.store.Update(c.Request.Context(), id, input.toPatch())
	if err != nil {
		ac.fail(c, "update", err)
		return
	}

	observability.RecordOperation("update", observability.ResultOK)
	ac.publish(EventUpdated, activity)
	requestLog(c).WithField("activity_id", id).Info("Activity updated")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Activity updated successfully",
		"data":    activity,
	})
}

func (ac *ActivityController) DeleteActivity(c *gin.Context) {
	id := c.Param("id")
	activity, err := ac.store.Delete(c.Request.Context(), id)
	if err != nil {
		ac.fail(c, "delete", err)
		return
	}

	observability.RecordOperation("delete", observability.ResultOK)
	ac.refreshGauge(c)
	ac.publish(EventDeleted, activity)
	requestLog(c).WithField("activity_id", id).Info("Activity deleted")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Activity deleted successfully",
		"data":    activity,
	})
}

// SearchActivities matches the address against the path query.
func (ac *ActivityController) SearchActivities(c *gin.Context) {
	results, err := ac.store.Search(c.Request.Context(), c.Param("query"))
	if err != nil {
		ac.fail(c, "search", err)
		return
	}
	observability.RecordOperation("search", observability.ResultOK)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": results, "count": len(results)})
}

// RecentActivities returns the newest N; an unusable N falls back to 5.
func (ac *ActivityController) RecentActivities(c *gin.Context) {
	limit, err := strconv.Atoi(c.Param("limit"))
	if err != nil || limit < 1 {
		limit = defaultRecentLimit
	}

	recent, err := ac.store.Recent(c.Request.Context(), limit)
	if err != nil {
		ac.fail(c, "recent", err)
		return
	}
	observability.RecordOperation("recent", observability.ResultOK)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": recent, "count": len(recent)})
}

// ActivitiesGeoJSON exports matching activities as a GeoJSON FeatureCollection.
func (ac *ActivityController) ActivitiesGeoJSON(c *gin.Context) {
	page, err := ac.store.List(c.Request.Context(), store.ListQuery{
		Search: c.Query("search"),
		Limit:  math.MaxInt32,
	})
	if err != nil {
		ac.fail(c, "geojson", err)
		return
	}
	observability.RecordOperation("geojson", observability.ResultOK)
	c.JSON(http.StatusOK, geo.FeatureCollection(page.Items))
}

// Health reports liveness and the number of stored activities.
func (ac *ActivityController) Health(c *gin.Context) {
	total, err := ac.store.Count(c.Request.Context())
	if err != nil {
		ac.fail(c, "health", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          "OK",
		"timestamp":       time.Now(),
		"totalActivities": total,
	})
}

// rejectBody answers a failed bind: size overflow, missing fields or malformed JSON.
func (ac *ActivityController) rejectBody(c *gin.Context, op string, err error) {
	observability.RecordOperation(op, observability.ResultInvalid)

	var tooLarge *http.MaxBytesError
	var missing validator.ValidationErrors
	switch {
	case errors.As(err, &tooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit)})
	case errors.As(err, &missing), errors.Is(err, io.EOF):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
	default:
		requestLog(c).WithError(err).Warn("invalid activity payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid activity input: " + err.Error()})
	}
}

// fail maps store errors onto HTTP responses.
func (ac *ActivityController) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		observability.RecordOperation(op, observability.ResultNotFound)
		c.JSON(http.StatusNotFound, gin.H{"error": "Activity not found"})
	case errors.Is(err, store.ErrDuplicateID):
		observability.RecordOperation(op, observability.ResultConflict)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Activity already exists"})
	default:
		observability.RecordOperation(op, observability.ResultError)
		requestLog(c).WithError(err).WithField("operation", op).Error("activity store failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (ac *ActivityController) refreshGauge(c *gin.Context) {
	n, err := ac.store.Count(c.Request.Context())
	if err != nil {
		requestLog(c).WithError(err).Warn("could not refresh stored activities gauge")
		return
	}
	observability.SetActivitiesStored(n)
}

func (ac *ActivityController) publish(eventType string, a models.Activity) {
	if ac.publisher == nil {
		return
	}
	ac.publisher.Publish(ActivityEvent{Type: eventType, Data: a, At: time.Now().UTC()})
}

// requestLog tags log lines with the request id.
func requestLog(c *gin.Context) *logrus.Entry {
	return logrus.WithField(middleware.RequestIDKey, c.GetString(middleware.RequestIDKey))
}

// RouteNotFound answers any unmatched route.
func RouteNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
}

// RecoverJSON turns a panic into a 500 with the panic message.
func RecoverJSON(c *gin.Context, recovered any) {
	logrus.WithField(middleware.RequestIDKey, c.GetString(middleware.RequestIDKey)).
		WithField("panic", recovered).
		Error("recovered from panic")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprint(recovered)})
}
