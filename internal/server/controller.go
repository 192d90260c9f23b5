package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"enbapp/internal/api"
	"enbapp/internal/enbapi"
)

var App *enbapi.App

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.String(429, "Too many requests. Try again in "+time.Until(info.ResetTime).String())
}

func ApiInit() { // Run Api Server
	// @title ENB Backend
	// @version 0.1
	// @description ENB Backend: REST API for accounts, claims and relayed transactions
	// @host localhost:8000
	// @BasePath /
	// @schemes http https
	App = enbapi.Init()
	SetLogger("enbapp.log")
	router := gin.Default()
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false
	// This makes it so each ip can only make 100 requests per second
	store := ratelimit.RedisStore(&ratelimit.RedisOptions{
		RedisClient: redis.NewClient(&redis.Options{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       1,
		}),
		Rate:  time.Second,
		Limit: 100,
	})
	mw := ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://0.0.0.0:3000",
			"http://localhost:3000",
		},
		AllowHeaders:  []string{"Origin", "Access-Control-Allow-Origin", "Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With"},
		ExposeHeaders: []string{"Content-Length"},
		AllowMethods:  []string{"GET, POST, OPTIONS, PUT, DELETE"},
		MaxAge:        24 * time.Hour,
	}))
	router.Use(func(c *gin.Context) {
		c.Set("app", App)
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	core := router.Group("/core/")
	{
		core.GET("/gasPrice", mw, api.GetGasPrice)
		core.GET("/gasPrice/", mw, api.GetGasPrice)
		core.GET("/balance/:address", mw, api.GetBalance)
		core.GET("/balance/:address/", mw, api.GetBalance)
	}
	apiGroup := router.Group("/api/")
	{
		apiGroup.POST("/create-account", mw, api.CreateAccount)
		apiGroup.POST("/create-account/", mw, api.CreateAccount)
		apiGroup.POST("/create-default-user", mw, api.CreateDefaultUser)
		apiGroup.POST("/create-default-user/", mw, api.CreateDefaultUser)
		apiGroup.POST("/activate-account", mw, api.ActivateAccount)
		apiGroup.POST("/activate-account/", mw, api.ActivateAccount)
		apiGroup.GET("/profile/:walletAddress", mw, api.GetProfile)
		apiGroup.GET("/profile/:walletAddress/", mw, api.GetProfile)
		apiGroup.POST("/daily-claim", mw, api.DailyClaim)
		apiGroup.POST("/daily-claim/", mw, api.DailyClaim)
		apiGroup.POST("/update-balance", mw, api.UpdateBalance)
		apiGroup.POST("/update-balance/", mw, api.UpdateBalance)
		apiGroup.GET("/transactions/:walletAddress", mw, api.GetTransactionsList)
		apiGroup.GET("/transactions/:walletAddress/", mw, api.GetTransactionsList)
		apiGroup.GET("/leaderboard/balance", mw, api.LeaderboardBalance)
		apiGroup.GET("/leaderboard/balance/", mw, api.LeaderboardBalance)
		apiGroup.GET("/leaderboard/earnings", mw, api.LeaderboardEarnings)
		apiGroup.GET("/leaderboard/earnings/", mw, api.LeaderboardEarnings)
		apiGroup.GET("/leaderboard/streaks", mw, api.LeaderboardStreaks)
		apiGroup.GET("/leaderboard/streaks/", mw, api.LeaderboardStreaks)
		apiGroup.GET("/user-rankings/:walletAddress", mw, api.GetUserRankings)
		apiGroup.GET("/user-rankings/:walletAddress/", mw, api.GetUserRankings)
		apiGroup.GET("/users", mw, api.GetUsers)
		apiGroup.GET("/users/", mw, api.GetUsers)
		apiGroup.POST("/update-membership", mw, api.UpdateMembership)
		apiGroup.POST("/update-membership/", mw, api.UpdateMembership)
		apiGroup.GET("/invitation-usage/:invitationCode", mw, api.GetInvitationUsage)
		apiGroup.GET("/invitation-usage/:invitationCode/", mw, api.GetInvitationUsage)
	}
	relay := router.Group("/relay/")
	{
		relay.POST("/daily-claim", mw, api.RelayDailyClaim)
		relay.POST("/daily-claim/", mw, api.RelayDailyClaim)
		relay.POST("/upgrade-membership", mw, api.RelayUpgradeMembership)
		relay.POST("/upgrade-membership/", mw, api.RelayUpgradeMembership)
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	fmt.Println("[ ENB Backend is up and listening to :" + port + " ]")
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to run ENB Backend on :"+port+": ", err)
	}
}
