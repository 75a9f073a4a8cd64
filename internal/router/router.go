package router

import (
	"moovyzoo/internal/config"
	"moovyzoo/internal/handler"
	"moovyzoo/internal/middleware"
	"moovyzoo/internal/pkg"
	"moovyzoo/internal/realtime"
	"moovyzoo/internal/repository/mysql"
	"moovyzoo/internal/repository/redis"
	"moovyzoo/internal/service"

	"github.com/gin-gonic/gin"
)

func InitRouter(cfg *config.Config, hub *realtime.Hub) *gin.Engine {
	r := gin.Default()

	smtpCfg := pkg.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}

	habitatRepo := mysql.NewHabitatRepository()
	memberRepo := mysql.NewMemberRepository()
	discussionRepo := mysql.NewDiscussionRepository()
	pollRepo := mysql.NewPollRepository()
	partyRepo := mysql.NewWatchPartyRepository()
	messageRepo := mysql.NewMessageRepository()
	counts := redis.NewMemberCountCache()

	emailSvc := service.NewEmailService(smtpCfg)
	userSvc := service.NewUserService(emailSvc)
	habitatSvc := service.NewHabitatService(habitatRepo, memberRepo, counts)
	dashboardSvc := service.NewDashboardService(habitatSvc, habitatRepo, memberRepo, discussionRepo, pollRepo, partyRepo)
	discussionSvc := service.NewDiscussionService(discussionRepo, habitatSvc)
	pollSvc := service.NewPollService(pollRepo, habitatSvc)
	partySvc := service.NewWatchPartyService(partyRepo, habitatSvc, smtpCfg)
	messageSvc := service.NewMessageService(messageRepo, discussionRepo, habitatSvc)

	user := handler.NewUserHandler(userSvc)
	email := handler.NewEmailHandler(emailSvc)
	habitat := handler.NewHabitatHandler(habitatSvc, dashboardSvc)
	discussion := handler.NewDiscussionHandler(discussionSvc)
	poll := handler.NewPollHandler(pollSvc)
	party := handler.NewWatchPartyHandler(partySvc)
	message := handler.NewMessageHandler(messageSvc)
	ws := handler.NewWSHandler(hub, habitatSvc)

	emailGroup := r.Group("/api/email")
	{
		emailGroup.POST("/:scope/code", email.SendCode)
	}

	userGroup := r.Group("/api/user")
	{
		userGroup.POST("/register", user.Register)
		userGroup.POST("/login", user.Login)
		userGroup.POST("/reset", user.ResetPassword)
	}

	tokenGroup := r.Group("/api/token")
	{
		tokenGroup.POST("/refresh", user.Refresh)
	}

	authGroup := r.Group("/api/auth")
	authGroup.Use(middleware.AuthMiddleware())
	{
		authGroup.POST("/logout", user.Logout)
		authGroup.POST("/change-password", user.ChangePassword)
		authGroup.GET("/me", user.Me)
		authGroup.PUT("/me", user.UpdateMe)
	}

	habitatGroup := r.Group("/api/habitat")
	habitatGroup.Use(middleware.AuthMiddleware())
	{
		habitatGroup.POST("/create", habitat.Create)
		habitatGroup.GET("/list", habitat.List)
		habitatGroup.GET("/:id", habitat.Get)
		habitatGroup.PUT("/:id", habitat.Update)
		habitatGroup.POST("/:id/join", habitat.Join)
		habitatGroup.POST("/:id/leave", habitat.Leave)
		habitatGroup.GET("/:id/dashboard", habitat.Dashboard)

		habitatGroup.POST("/:id/discussions", discussion.Create)
		habitatGroup.GET("/:id/discussions", discussion.List)
		habitatGroup.POST("/:id/polls", poll.Create)
		habitatGroup.GET("/:id/polls", poll.List)
		habitatGroup.POST("/:id/watch-parties", party.Create)
		habitatGroup.GET("/:id/watch-parties", party.List)
	}

	discussionGroup := r.Group("/api/discussion")
	discussionGroup.Use(middleware.AuthMiddleware())
	{
		discussionGroup.DELETE("/:id", discussion.Delete)
		discussionGroup.POST("/:id/messages", message.Send)
		discussionGroup.GET("/:id/messages", message.List)
	}

	pollGroup := r.Group("/api/poll")
	pollGroup.Use(middleware.AuthMiddleware())
	{
		pollGroup.POST("/:id/vote", poll.Vote)
		pollGroup.DELETE("/:id", poll.Delete)
	}

	partyGroup := r.Group("/api/watch-party")
	partyGroup.Use(middleware.AuthMiddleware())
	{
		partyGroup.POST("/:id/join", party.Join)
		partyGroup.POST("/:id/leave", party.Leave)
		partyGroup.POST("/:id/remind", party.Remind)
	}

	// Websocket auth happens inside the handler (token query param).
	r.GET("/ws/habitat/:id", ws.Subscribe)

	return r
}
