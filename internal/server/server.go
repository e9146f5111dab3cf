package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"talib.app/backend/internal/config"
	"talib.app/backend/internal/entity"
	"talib.app/backend/internal/job"
	"talib.app/backend/internal/metrics"
	"talib.app/backend/internal/middleware"
	"talib.app/backend/pkg/ratelimiter"
	"talib.app/backend/pkg/response"
	"talib.app/backend/pkg/storage"
	"talib.app/backend/pkg/token"

	adminHttp "talib.app/backend/internal/modules/admin/delivery/http"

	attachmentHttp "talib.app/backend/internal/modules/attachment/delivery/http"
	attachmentRepo "talib.app/backend/internal/modules/attachment/repository"
	attachmentService "talib.app/backend/internal/modules/attachment/service"

	authHttp "talib.app/backend/internal/modules/auth/delivery/http"
	authRepo "talib.app/backend/internal/modules/auth/repository"
	authService "talib.app/backend/internal/modules/auth/service"

	categoryHttp "talib.app/backend/internal/modules/category/delivery/http"
	categoryRepo "talib.app/backend/internal/modules/category/repository"
	categoryService "talib.app/backend/internal/modules/category/service"

	contentRepo "talib.app/backend/internal/modules/content/repository"
	contentService "talib.app/backend/internal/modules/content/service"

	favoriteHttp "talib.app/backend/internal/modules/favorite/delivery/http"
	favoriteRepo "talib.app/backend/internal/modules/favorite/repository"
	favoriteService "talib.app/backend/internal/modules/favorite/service"

	housingHttp "talib.app/backend/internal/modules/housing/delivery/http"
	housingRepo "talib.app/backend/internal/modules/housing/repository"
	housingService "talib.app/backend/internal/modules/housing/service"

	itemHttp "talib.app/backend/internal/modules/item/delivery/http"
	itemRepo "talib.app/backend/internal/modules/item/repository"
	itemService "talib.app/backend/internal/modules/item/service"

	notifHttp "talib.app/backend/internal/modules/notification/delivery/http"
	notifRepo "talib.app/backend/internal/modules/notification/repository"
	notifService "talib.app/backend/internal/modules/notification/service"

	ownerHttp "talib.app/backend/internal/modules/owner/delivery/http"
	ownerRepo "talib.app/backend/internal/modules/owner/repository"
	ownerService "talib.app/backend/internal/modules/owner/service"

	reportHttp "talib.app/backend/internal/modules/report/delivery/http"
	reportRepo "talib.app/backend/internal/modules/report/repository"
	reportService "talib.app/backend/internal/modules/report/service"

	roommateHttp "talib.app/backend/internal/modules/roommate/delivery/http"
	roommateRepo "talib.app/backend/internal/modules/roommate/repository"
	roommateService "talib.app/backend/internal/modules/roommate/service"

	searchHttp "talib.app/backend/internal/modules/search/delivery/http"
	searchService "talib.app/backend/internal/modules/search/service"

	statHttp "talib.app/backend/internal/modules/stat/delivery/http"
	statService "talib.app/backend/internal/modules/stat/service"

	studentHttp "talib.app/backend/internal/modules/student/delivery/http"
	studentRepo "talib.app/backend/internal/modules/student/repository"
	studentService "talib.app/backend/internal/modules/student/service"

	viewRepo "talib.app/backend/internal/modules/view/repository"
	viewService "talib.app/backend/internal/modules/view/service"
)

const (
	jobTimeout      = 5 * time.Minute
	shutdownTimeout = 15 * time.Second
)

// Deps are the external resources the server is built on. Redis may be nil, which
// disables pub/sub, cooldowns and buffered view counting.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	Search   searchService.SearchService
	Storage  storage.ImageStorage
	Registry *prometheus.Registry
	Logger   *zap.Logger
}

type Server struct {
	engine    *gin.Engine
	scheduler *job.Scheduler
	http      *http.Server
	logger    *zap.Logger

	mu     sync.Mutex
	closed bool
}

func NewServer(d Deps) (*Server, error) {
	cfg := d.Config
	logger := d.Logger
	m := metrics.NewWithRegistry(d.Registry)
	response.SetProduction(cfg.IsProduction())

	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	limiter := ratelimiter.New(d.Redis)

	// Repositories
	studentRepository := studentRepo.NewStudentRepository(d.DB)
	ownerRepository := ownerRepo.NewOwnerRepository(d.DB)
	housingRepository := housingRepo.NewHousingRepository(d.DB)
	itemRepository := itemRepo.NewItemRepository(d.DB)
	roommateRepository := roommateRepo.NewRoommateRepository(d.DB)
	reportRepository := reportRepo.NewReportRepository(d.DB)

	// Shared services
	attachmentSvc := attachmentService.NewAttachmentService(attachmentRepo.NewAttachmentRepository(d.DB), d.Storage, cfg.MaxUploadSize, m, logger)
	notificationSvc := notifService.NewNotificationService(notifRepo.NewNotificationRepository(d.DB), d.Redis, logger)
	viewSvc := viewService.NewViewService(d.Redis, viewRepo.NewViewRepository(d.DB), logger)
	categorySvc := categoryService.NewCategoryService(categoryRepo.NewCategoryRepository(d.DB))
	resolver := contentService.NewResolver(contentRepo.NewContentRepository(d.DB))

	authSvc := authService.NewAuthService(studentRepository, ownerRepository, authRepo.NewAdminRepository(d.DB), tokens, authService.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	}, logger)
	studentSvc := studentService.NewStudentService(studentRepository, attachmentSvc, d.Search, d.Storage, logger)
	ownerSvc := ownerService.NewOwnerService(ownerRepository, attachmentSvc, d.Search, d.Storage, logger)
	housingSvc := housingService.NewHousingService(housingRepository, attachmentSvc, d.Search, viewSvc, limiter, cfg.RateLimitListing, m, logger)
	itemSvc := itemService.NewItemService(itemRepository, categorySvc, attachmentSvc, d.Search, viewSvc, limiter, cfg.RateLimitListing, m, logger)
	roommateSvc := roommateService.NewRoommateService(roommateRepository, notificationSvc, logger)
	favoriteSvc := favoriteService.NewFavoriteService(favoriteRepo.NewFavoriteRepository(d.DB), resolver, notificationSvc, m, logger)
	reportSvc := reportService.NewReportService(reportRepository, resolver, notificationSvc, limiter, cfg.RateLimitReport, m, logger)
	statSvc := statService.NewStatService(studentRepository, ownerRepository, housingRepository, itemRepository, roommateRepository, reportRepository)

	h := handlers{
		auth:         authHttp.NewAuthHandler(authSvc, cfg.FrontendURL, cfg.IsProduction()),
		student:      studentHttp.NewStudentHandler(studentSvc),
		owner:        ownerHttp.NewOwnerHandler(ownerSvc),
		housing:      housingHttp.NewHousingHandler(housingSvc),
		item:         itemHttp.NewItemHandler(itemSvc),
		category:     categoryHttp.NewCategoryHandler(categorySvc),
		roommate:     roommateHttp.NewRoommateHandler(roommateSvc),
		favorite:     favoriteHttp.NewFavoriteHandler(favoriteSvc),
		report:       reportHttp.NewReportHandler(reportSvc),
		attachment:   attachmentHttp.NewAttachmentHandler(attachmentSvc),
		notification: notifHttp.NewNotificationHandler(notificationSvc, d.Redis, cfg.AllowedOrigins, logger),
		search:       searchHttp.NewSearchHandler(d.Search, housingSvc, itemSvc, logger),
		stat:         statHttp.NewStatHandler(statSvc),
		admin:        adminHttp.NewAdminHandler(housingSvc, itemSvc),
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, "route not found")
	})
	router.NoMethod(func(c *gin.Context) {
		response.Fail(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	setupCORS(router, cfg.AllowedOrigins)
	router.Use(middleware.Recovery(logger, cfg.IsProduction()))
	router.Use(middleware.RequestLogger(logger, "/health", "/metrics"))
	router.Use(middleware.Metrics(m))

	if local, ok := d.Storage.(interface{ Dir() string }); ok {
		router.Static(storage.URLPrefix, local.Dir())
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.AppVersion})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))

	registerRoutes(router, middleware.NewAuthMiddleware(tokens), h)

	scheduler := job.NewScheduler(jobTimeout, logger)
	for _, j := range []job.Job{
		job.NewOrphanCleanupJob(attachmentSvc, "@every 1h", logger),
		job.NewViewSyncJob(viewSvc, "@every 1m", logger),
		job.NewNotificationPurgeJob(notificationSvc, "@daily", logger),
	} {
		if err := scheduler.Register(j); err != nil {
			return nil, err
		}
	}

	return &Server{
		engine:    router,
		scheduler: scheduler,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}, nil
}

type handlers struct {
	auth         *authHttp.AuthHandler
	student      *studentHttp.StudentHandler
	owner        *ownerHttp.OwnerHandler
	housing      *housingHttp.HousingHandler
	item         *itemHttp.ItemHandler
	category     *categoryHttp.CategoryHandler
	roommate     *roommateHttp.RoommateHandler
	favorite     *favoriteHttp.FavoriteHandler
	report       *reportHttp.ReportHandler
	attachment   *attachmentHttp.AttachmentHandler
	notification *notifHttp.NotificationHandler
	search       *searchHttp.SearchHandler
	stat         *statHttp.StatHandler
	admin        *adminHttp.AdminHandler
}

func registerRoutes(router *gin.Engine, auth *middleware.AuthMiddleware, h handlers) {
	requireAuth := auth.RequireAuth()
	optionalAuth := auth.OptionalAuth()
	studentOnly := auth.RequireRole(entity.RoleStudent)
	ownerOnly := auth.RequireRole(entity.RoleOwner)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.auth.Register)
		authGroup.POST("/login", h.auth.Login)
		authGroup.GET("/google/login", h.auth.GoogleLogin)
		authGroup.GET("/google/callback", h.auth.GoogleCallback)
		authGroup.GET("/me", requireAuth, h.auth.Me)
		authGroup.POST("/change-password", requireAuth, h.auth.ChangePassword)
	}

	students := router.Group("/students")
	{
		students.GET("/me", requireAuth, studentOnly, h.student.GetMe)
		students.PUT("/me", requireAuth, studentOnly, h.student.UpdateMe)
		students.GET("/:id", optionalAuth, h.student.GetStudent)
		students.GET("/:id/items", h.item.ListByStudent)
		students.GET("/:id/contact", requireAuth, h.student.GetContact)
	}

	owners := router.Group("/owners")
	{
		owners.GET("/me", requireAuth, ownerOnly, h.owner.GetMe)
		owners.PUT("/me", requireAuth, ownerOnly, h.owner.UpdateMe)
		owners.GET("/:id", optionalAuth, h.owner.GetOwner)
		owners.GET("/:id/housing", h.housing.ListByOwner)
		owners.GET("/:id/contact", requireAuth, h.owner.GetContact)
	}

	housing := router.Group("/housing")
	{
		housing.GET("", h.housing.ListHousing)
		housing.GET("/types", h.housing.GetTypes)
		housing.GET("/:id", optionalAuth, h.housing.GetHousing)
		housing.POST("", requireAuth, ownerOnly, h.housing.CreateHousing)
		housing.PUT("/:id", requireAuth, ownerOnly, h.housing.UpdateHousing)
		housing.PUT("/:id/status", requireAuth, ownerOnly, h.housing.UpdateStatus)
		housing.DELETE("/:id", requireAuth, h.housing.DeleteHousing)
		housing.GET("/:id/contact", requireAuth, h.housing.GetContact)
	}

	items := router.Group("/items")
	{
		items.GET("", h.item.ListItems)
		items.GET("/categories", h.category.GetAllCategories)
		items.GET("/:id", optionalAuth, h.item.GetItem)
		items.POST("", requireAuth, studentOnly, h.item.CreateItem)
		items.PUT("/:id", requireAuth, studentOnly, h.item.UpdateItem)
		items.PUT("/:id/sold", requireAuth, studentOnly, h.item.ToggleSold)
		items.DELETE("/:id", requireAuth, h.item.DeleteItem)
		items.GET("/:id/contact", requireAuth, h.item.GetContact)
	}

	roommates := router.Group("/roommates", requireAuth)
	{
		roommates.GET("", h.roommate.ListProfiles)
		roommates.GET("/me", studentOnly, h.roommate.GetMine)
		roommates.PUT("/me", studentOnly, h.roommate.UpdateMine)
		roommates.DELETE("/me", studentOnly, h.roommate.DeleteMine)
		roommates.GET("/me/matches", studentOnly, h.roommate.GetMyMatches)
		roommates.POST("", studentOnly, h.roommate.CreateProfile)
		roommates.GET("/:id", h.roommate.GetProfile)
		roommates.GET("/:id/matches", h.roommate.GetMatches)
		roommates.GET("/:id/contact", h.roommate.GetContact)
	}

	favorites := router.Group("/favorites", requireAuth, studentOnly)
	{
		favorites.GET("", h.favorite.ListFavorites)
		favorites.GET("/check", h.favorite.Check)
		favorites.POST("", h.favorite.AddFavorite)
		favorites.DELETE("", h.favorite.RemoveByTarget)
		favorites.DELETE("/:id", h.favorite.RemoveFavorite)
	}

	reports := router.Group("/reports", requireAuth)
	{
		reports.POST("", h.report.FileReport)
		reports.GET("/me", h.report.MyReports)
	}

	router.POST("/uploads", requireAuth, h.attachment.UploadImage)
	router.GET("/search", h.search.Search)

	notifications := router.Group("/notifications", requireAuth)
	{
		notifications.GET("", h.notification.GetNotifications)
		notifications.GET("/unread-count", h.notification.UnreadCount)
		notifications.PUT("/read-all", h.notification.MarkAllAsRead)
		notifications.PUT("/:id/read", h.notification.MarkAsRead)
		notifications.GET("/ws", h.notification.HandleWebSocket)
	}

	router.POST("/admin/login", h.auth.AdminLogin)
	admin := router.Group("/admin", requireAuth, auth.RequireRole(entity.RoleAdmin))
	{
		admin.GET("/dashboard", h.stat.GetDashboard)

		admin.GET("/students", h.student.ListStudents)
		admin.DELETE("/students/:id", h.student.DeleteStudent)

		admin.GET("/owners", h.owner.ListOwners)
		admin.PUT("/owners/:id/verify", h.owner.VerifyOwner)
		admin.DELETE("/owners/:id", h.owner.DeleteOwner)

		admin.GET("/housing", h.admin.ListHousing)
		admin.DELETE("/housing/:id", h.housing.DeleteHousing)

		admin.GET("/items", h.admin.ListItems)
		admin.DELETE("/items/:id", h.item.DeleteItem)

		admin.GET("/reports", h.report.ListReports)
		admin.GET("/reports/:id", h.report.GetReport)
		admin.PUT("/reports/:id", h.report.UpdateStatus)

		admin.POST("/categories", h.category.CreateCategory)
		admin.DELETE("/categories/:id", h.category.DeleteCategory)
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the scheduler and serves HTTP until Shutdown is called. It returns
// nil at once when Shutdown has already run.
func (s *Server) Run() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.scheduler.Start()
	s.mu.Unlock()

	s.logger.Info("server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.scheduler.Stop(ctx)
	return s.http.Shutdown(ctx)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
