package router

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-records/internal/handler"
)

// Dependencies groups router dependencies for registration. Nil handlers
// leave their routes unregistered.
type Dependencies struct {
	Students    *handler.StudentHandler
	Images      *handler.ProfileImageHandler
	Enrollments *handler.EnrollmentHandler
	Subjects    *handler.SubjectHandler
	Semesters   *handler.SemesterHandler
	Dashboard   *handler.DashboardHandler
	Exports     *handler.ExportHandler
	Metrics     *handler.MetricsHandler
	APIPrefix   string
	Middlewares []gin.HandlerFunc
}

// Register wires the HTTP routes into the gin engine.
func Register(r *gin.Engine, deps Dependencies) {
	if deps.Metrics != nil {
		r.GET("/health", deps.Metrics.Health)
		r.GET("/ready", deps.Metrics.Ready)
		r.GET("/metrics", deps.Metrics.Prometheus)
	}

	prefix := deps.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix, deps.Middlewares...)

	if deps.Students != nil {
		students := api.Group("/students")
		students.GET("", deps.Students.List)
		students.POST("", deps.Students.Create)
		students.DELETE("", deps.Students.ClearAll)
		students.GET("/:id", deps.Students.Get)
		students.PATCH("/:id", deps.Students.Update)
		students.DELETE("/:id", deps.Students.Delete)

		if deps.Images != nil {
			students.PUT("/:id/image", deps.Images.Upload)
			students.DELETE("/:id/image", deps.Images.Remove)
		}

		if deps.Enrollments != nil {
			students.GET("/:id/subjects", deps.Enrollments.List)
			students.POST("/:id/subjects", deps.Enrollments.Enroll)
			students.PATCH("/:id/subjects/:enrollmentId", deps.Enrollments.SetGrade)
			students.DELETE("/:id/subjects/:enrollmentId", deps.Enrollments.Remove)
			students.GET("/:id/available-subjects", deps.Enrollments.AvailableSubjects)
			students.GET("/:id/semester-options", deps.Enrollments.SemesterOptions)
			students.GET("/:id/transcript", deps.Enrollments.Transcript)
		}
	}

	if deps.Subjects != nil {
		subjects := api.Group("/subjects")
		subjects.GET("", deps.Subjects.List)
		subjects.POST("", deps.Subjects.Create)
		subjects.GET("/:id", deps.Subjects.Get)
		subjects.PATCH("/:id", deps.Subjects.Update)
		subjects.DELETE("/:id", deps.Subjects.Delete)
	}

	if deps.Semesters != nil {
		semesters := api.Group("/semesters")
		semesters.GET("", deps.Semesters.List)
		semesters.POST("", deps.Semesters.Create)
		semesters.GET("/active", deps.Semesters.Active)
		semesters.GET("/:id", deps.Semesters.Get)
		semesters.PATCH("/:id", deps.Semesters.Update)
		semesters.DELETE("/:id", deps.Semesters.Delete)
	}

	if deps.Dashboard != nil {
		api.GET("/dashboard", deps.Dashboard.Stats)
	}

	if deps.Exports != nil {
		exports := api.Group("/exports")
		exports.POST("/students", deps.Exports.Students)
		exports.GET("/download", deps.Exports.Download)
	}
}
