package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/basma-app/maintenance_backend/config"
	"github.com/basma-app/maintenance_backend/models"
	"github.com/basma-app/maintenance_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func registerRoutes(r *gin.Engine) {
	r.POST("/requests", createRequestHandler)
	r.GET("/requests", listRequestsHandler)
	r.GET("/requests/:id", getRequestHandler)
	r.PATCH("/requests/:id/status", updateRequestStatusHandler)
	r.POST("/requests/:id/assign", assignRequestHandler)
	r.POST("/requests/:id/self-assign", selfAssignRequestHandler)
	r.GET("/requests/:id/status-history", requestStatusHistoryHandler)
	r.GET("/requests/:id/assignment-history", requestAssignmentHistoryHandler)

	r.GET("/identifiers", listIdentifiersHandler)

	r.POST("/building-configs", createBuildingConfigHandler)
	r.GET("/building-configs", listBuildingConfigsHandler)
	r.GET("/building-configs/:id", getBuildingConfigHandler)
	r.PUT("/building-configs/:id", updateBuildingConfigHandler)
	r.DELETE("/building-configs/:id", deleteBuildingConfigHandler)
	r.POST("/building-configs/reset-sequence", resetBuildingSequenceHandler)

	r.POST("/users", createUserHandler)
	r.GET("/users", listUsersHandler)
	r.GET("/users/:id", getUserHandler)
	r.PUT("/users/:id", updateUserHandler)
	r.POST("/login", loginHandler)

	r.POST("/categories", createCategoryHandler)
	r.GET("/categories", listCategoriesHandler)
	r.PUT("/categories/:id", updateCategoryHandler)
	r.DELETE("/categories/:id", deleteCategoryHandler)
}

// statusForError maps domain errors onto HTTP statuses. Anything
// unrecognized is treated as a server fault.
func statusForError(err error) int {
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, utils.ErrorRoleNotPermitted):
		return http.StatusForbidden
	case errors.Is(err, utils.ErrorInvalidTransition),
		errors.Is(err, utils.ErrorNotAvailableForAssignment),
		errors.Is(err, utils.ErrorDuplicateIdentifier),
		errors.Is(err, utils.ErrorBuildingInUse),
		errors.Is(err, utils.ErrorCategoryInUse):
		return http.StatusConflict
	case errors.Is(err, utils.ErrorInvalidIdentifierFormat),
		errors.Is(err, utils.ErrorBuildingRequired),
		errors.Is(err, utils.ErrorInvalidBuildingCode),
		errors.Is(err, utils.ErrorInvalidTechnician):
		return http.StatusBadRequest
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		config.LogError(config.GetLogger(), "handlers", c.FullPath(), "", nil, err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(status, gin.H{"error": "validation failed", "fields": utils.ProcessValidationErrors(err)})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func createRequestHandler(c *gin.Context) {
	var input models.NewMaintenanceRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	request, err := models.CreateMaintenanceRequest(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

func listRequestsHandler(c *gin.Context) {
	var building *string
	if v := c.Query("building"); v != "" {
		building = &v
	}
	var status *models.RequestStatus
	if v := c.Query("status"); v != "" {
		parsed, err := models.ParseRequestStatus(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status = &parsed
	}
	var assignedToId *int
	if v := c.Query("assigned_to_id"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assigned_to_id"})
			return
		}
		assignedToId = &n
	}
	requests, err := models.GetMaintenanceRequests(c.Request.Context(), building, status, assignedToId)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func getRequestHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	request, err := models.GetMaintenanceRequest(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func updateRequestStatusHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var body updateStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	target, err := models.ParseRequestStatus(body.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	request, err := models.UpdateRequestStatus(c.Request.Context(), id, target, body.Reason)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

type assignRequestBody struct {
	TechnicianId int    `json:"technician_id"`
	Reason       string `json:"reason"`
}

func assignRequestHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var body assignRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if body.TechnicianId <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "technician_id is required"})
		return
	}
	request, err := models.AssignRequest(c.Request.Context(), id, body.TechnicianId, body.Reason)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func selfAssignRequestHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	request, err := models.SelfAssignRequest(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func requestStatusHistoryHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	histories, err := models.GetRequestStatusHistories(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, histories)
}

func requestAssignmentHistoryHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	histories, err := models.GetRequestAssignmentHistories(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, histories)
}

func listIdentifiersHandler(c *gin.Context) {
	var building *string
	if v := c.Query("building"); v != "" {
		building = &v
	}
	identifiers, err := models.GetRequestIdentifiers(c.Request.Context(), building)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, identifiers)
}

func createBuildingConfigHandler(c *gin.Context) {
	var input models.NewBuildingConfig
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	buildingConfig, err := models.CreateBuildingConfig(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, buildingConfig)
}

func listBuildingConfigsHandler(c *gin.Context) {
	buildingConfigs, err := models.GetBuildingConfigs(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildingConfigs)
}

func getBuildingConfigHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	buildingConfig, err := models.GetBuildingConfig(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildingConfig)
}

func updateBuildingConfigHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewBuildingConfig
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	buildingConfig, err := models.UpdateBuildingConfig(c.Request.Context(), id, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildingConfig)
}

func deleteBuildingConfigHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	buildingConfig, err := models.DeleteBuildingConfig(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildingConfig)
}

type resetSequenceRequest struct {
	BuildingName string `json:"building_name"`
}

func resetBuildingSequenceHandler(c *gin.Context) {
	var body resetSequenceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if body.BuildingName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "building_name is required"})
		return
	}
	buildingConfig, err := models.ResetBuildingSequence(c.Request.Context(), body.BuildingName)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildingConfig)
}

func createUserHandler(c *gin.Context) {
	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	user, err := models.CreateUser(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func listUsersHandler(c *gin.Context) {
	var role *models.UserRole
	if v := c.Query("role"); v != "" {
		parsed, err := models.ParseUserRole(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		role = &parsed
	}
	users, err := models.GetUsers(c.Request.Context(), role)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func getUserHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	user, err := models.GetUser(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func updateUserHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	user, err := models.UpdateUser(c.Request.Context(), id, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func loginHandler(c *gin.Context) {
	var body loginRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	user, err := models.VerifyUserPassword(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func createCategoryHandler(c *gin.Context) {
	var input models.NewCategory
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	category, err := models.CreateCategory(c.Request.Context(), &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func listCategoriesHandler(c *gin.Context) {
	categories, err := models.GetCategories(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func updateCategoryHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewCategory
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	category, err := models.UpdateCategory(c.Request.Context(), id, &input)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func deleteCategoryHandler(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	category, err := models.DeleteCategory(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}
