package api

import (
	"net/http" // HTTP status codes

	"contact_system/internal/config"     // Application configuration
	"contact_system/internal/middleware" // Authentication middleware
	"contact_system/internal/service"    // Business logic

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Deps are the shared resources handlers are built from
type Deps struct {
	DB     *gorm.DB       // Database connection
	Redis  *redis.Client  // Optional cache; nil disables caching
	Config *config.Config // Application configuration
}

// collection registers list and create on both "/x" and "/x/"
func collection(g *gin.RouterGroup, list, create gin.HandlerFunc) {
	for _, path := range []string{"", "/"} {
		g.GET(path, list)
		g.POST(path, create)
	}
}

// RegisterRoutes wires every endpoint onto r
func RegisterRoutes(r *gin.Engine, deps Deps) {
	cfg, rdb := deps.Config, deps.Redis
	users := service.NewUserService(deps.DB)
	contacts := service.NewContactService(deps.DB)
	phones := service.NewPhoneService(deps.DB)
	imports := service.NewImportService(deps.DB)
	qas := service.NewSecurityQAService(deps.DB)
	blacklist := service.NewBlacklistService(deps.DB)

	// Liveness
	r.GET("/greet", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Hello World!"})
	})

	// Every protected route checks the token and that its user still exists
	authed := []gin.HandlerFunc{
		middleware.JWTAuthMiddleware(cfg.JWTSecret, blacklist),
		middleware.CurrentUserMiddleware(users),
	}

	// Auth routes
	auth := r.Group("/auth")
	auth.POST("/register", RegisterHandler(users))                         // Registration endpoint
	auth.POST("/login", LoginHandler(users, cfg))                          // Login endpoint
	auth.POST("/refresh", RefreshHandler(users, blacklist, cfg))           // Token refresh endpoint
	auth.POST("/recover/questions", RecoveryQuestionsHandler(qas))         // Recovery questions endpoint
	auth.POST("/recover", RecoverHandler(qas))                             // Password recovery endpoint
	auth.POST("/logout", append(authed, LogoutHandler(blacklist, cfg))...) // Logout endpoint
	auth.GET("/users/me", append(authed, MeHandler(users))...)             // Current user endpoint

	// Account routes
	account := r.Group("/users", authed...)
	account.DELETE("/me", DeleteMeHandler(users, blacklist, rdb)) // Delete account endpoint

	// Contact routes
	contactGroup := r.Group("/contacts", authed...)
	collection(contactGroup, ListContactsHandler(contacts, rdb, cfg.CacheTTL), CreateContactHandler(contacts, rdb))
	contactGroup.POST("/upload-vcf", UploadVCFHandler(imports, rdb, cfg.UploadMaxBytes)) // Bulk vCard import
	contactGroup.GET("/:id", GetContactHandler(contacts))
	contactGroup.PUT("/:id", UpdateContactHandler(contacts, rdb))
	contactGroup.DELETE("/:id", DeleteContactHandler(contacts, rdb))

	// Phone routes
	phoneGroup := r.Group("/phones", authed...)
	collection(phoneGroup, ListPhonesHandler(phones), CreatePhoneHandler(phones, rdb))
	phoneGroup.GET("/:id", GetPhoneHandler(phones))
	phoneGroup.PUT("/:id", UpdatePhoneHandler(phones, rdb))
	phoneGroup.DELETE("/:id", DeletePhoneHandler(phones, rdb))

	// Security question routes
	qaGroup := r.Group("/securities", authed...)
	collection(qaGroup, ListSecurityQAsHandler(qas), CreateSecurityQAHandler(qas))
	qaGroup.DELETE("/:id", DeleteSecurityQAHandler(qas))
}
