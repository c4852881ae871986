package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/roster/internal/app/controllers"
	"github.com/yigit/roster/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	studentController *controllers.StudentController,
	healthController *controllers.HealthController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// --- Public routes ---
	router.GET("/health", healthController.Health)
	router.POST("/login", authController.Login)

	// --- Authenticated Routes Group ---
	authenticated := router.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	students := authenticated.Group("/students")
	{
		students.POST("", studentController.CreateStudent)
		students.GET("", studentController.ListStudents)
		students.GET("/export", studentController.ExportStudents)
		students.GET("/year/:year", studentController.ListStudentsByYear)
		students.GET("/:id", studentController.GetStudent)
		students.PUT("/:id", studentController.UpdateStudent)
	}
}
