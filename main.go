package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"travelfront/avatar"
	"travelfront/config"
	"travelfront/handlers"
	"travelfront/planstore"
	"travelfront/userstore"
	"travelfront/weather"
)

func main() {
	cfg := config.Load()

	plans := planstore.New(cfg.PlannerAPIBase, nil)
	users := userstore.New()

	planHandler := handlers.NewPlanHandler(plans, cfg.PublicBase)
	userHandler := handlers.NewUserHandler(users)
	widgetHandler := handlers.NewWidgetHandler(weather.New(nil), avatar.NewResolver(nil))

	r := gin.Default()

	// CORS 設定 - 允許前端跨域請求
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:" + cfg.ServerPort, "*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 靜態檔案服務
	r.Static("/web", cfg.StaticDir)
	r.GET("/", func(c *gin.Context) {
		c.Redirect(302, "/web/")
	})

	// 頁面 API 路由
	pages := r.Group("/pages")
	{
		// 旅行計劃
		pages.GET("/plans", planHandler.List)
		pages.POST("/plans", planHandler.Create)
		pages.GET("/plans/:id", planHandler.Detail)
		pages.GET("/plans/:id/result", planHandler.Result)
		pages.POST("/plans/:id/generate", planHandler.Generate)
		pages.PUT("/plans/:id", planHandler.Update)
		pages.DELETE("/plans/:id", planHandler.Delete)
		pages.POST("/plans/:id/invite", planHandler.Invite)
		pages.POST("/plans/:id/vote", planHandler.Vote)

		// 個人資料與設定
		pages.GET("/profile", userHandler.Profile)
		pages.PUT("/profile", userHandler.UpdateProfile)
		pages.PUT("/profile/preferences", userHandler.UpdatePreferences)
		pages.PUT("/profile/notifications", userHandler.UpdateNotifications)
		pages.PUT("/profile/privacy", userHandler.UpdatePrivacy)
		pages.POST("/login", userHandler.Login)
		pages.POST("/logout", userHandler.Logout)

		// 小工具
		pages.GET("/weather", widgetHandler.Weather)
		pages.GET("/avatar", widgetHandler.Avatar)

		// 健康檢查
		pages.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
				"time":   time.Now(),
			})
		})
	}

	addr := ":" + cfg.ServerPort
	log.Printf("Server running on http://localhost%s", addr)
	log.Printf("Frontend: http://localhost%s/web", addr)
	log.Printf("Pages API: http://localhost%s/pages", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
