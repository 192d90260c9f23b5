package enbapi

import (
	"context"
	"encoding/json"
	"os"
	"strconv"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"enbapp/internal/evm"
	"enbapp/internal/relayer"
)

// Relayer is the contract-call surface consumed by the claim and
// membership routes; the concrete client lives in internal/relayer.
type Relayer interface {
	SubmitDailyClaim(address string) (string, error)
	SubmitMembershipUpgrade(address string, level uint8) (string, error)
}

type App struct {
	Rpc     *evm.Client
	Relayer Relayer
	Rdb     *redis.Client
	Db      *gorm.DB
}

type AppConfig struct {
	Settings AppSettings `json:"settings"`
}

type AppSettings struct {
	Reward RewardSettings `json:"reward"`
	Limits SettingLimit   `json:"limits"`
}

type RewardSettings struct {
	Base           float64 `json:"base"`
	StreakCap      uint    `json:"streak_cap"`
	BasedRate      float64 `json:"based_rate"`
	SuperBasedRate float64 `json:"super_based_rate"`
	LegendaryRate  float64 `json:"legendary_rate"`
}

type SettingLimit struct {
	LeaderboardMax  int `json:"leaderboard_max"`
	TransactionsMax int `json:"transactions_max"`
}

var (
	DefaultAppConfig = &AppConfig{
		Settings: AppSettings{
			Reward: RewardSettings{
				Base:           10,
				StreakCap:      5,
				BasedRate:      1,
				SuperBasedRate: 1.5,
				LegendaryRate:  2,
			},
			Limits: SettingLimit{
				LeaderboardMax:  100,
				TransactionsMax: 100,
			},
		},
	}
	CurrentAppConfig = DefaultAppConfig
)

func Init() *App {
	loadEnv()
	redisClient := setupRedis()
	db := setupDb()
	client := evm.New(os.Getenv("RPC_URL"))

	app := &App{
		Rpc:     client,
		Relayer: relayer.New(),
		Rdb:     redisClient,
		Db:      db,
	}
	loadAppConfig(app.Rdb)
	return app
}

type AppWorker struct {
	Rdb   *redis.Client
	Db    *gorm.DB
	Aqs   *asynq.Server
	Sched *asynq.Scheduler
}

func InitWorker() *AppWorker {
	loadEnv()
	redisClient := setupRedis()
	db := setupDb()

	app := &AppWorker{
		Rdb:   redisClient,
		Db:    db,
		Aqs:   setupAsynqServer(),
		Sched: setupAsynqScheduler(),
	}
	loadAppConfig(app.Rdb)
	return app
}

// loadAppConfig pulls shared reward settings from Redis, seeding the
// defaults on first run so every process reads the same values.
func loadAppConfig(rdb *redis.Client) {
	isSet := false
	appConfigRaw, _ := rdb.Get(context.Background(), "app_config").Result()
	if len(appConfigRaw) > 0 {
		err := json.Unmarshal([]byte(appConfigRaw), &CurrentAppConfig)
		if err == nil {
			isSet = true
		}
	}
	if !isSet {
		currentConfig, _ := json.Marshal(DefaultAppConfig)
		rdb.Set(context.Background(), "app_config", currentConfig, 0)
	}
}

func setupRedis() *redis.Client {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
	return redisClient
}

func setupDb() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		panic("failed to connect to the db")
	}
	err = db.AutoMigrate(
		&Account{},
		&InvitationUsage{},
		&Transaction{},
	)
	if err != nil {
		panic("failed to run migrations")
	}

	return db
}

func setupAsynqServer() *asynq.Server {
	concurency, err := strconv.Atoi(os.Getenv("WORKER_SCALE"))
	if err != nil {
		concurency = 10
	}
	asynqServer := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		asynq.Config{
			Concurrency: concurency,
			Queues: map[string]int{
				"snapshots": 1,
			},
		},
	)
	return asynqServer
}

func setupAsynqScheduler() *asynq.Scheduler {
	return asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		&asynq.SchedulerOpts{},
	)
}

func loadEnv() {
	env := os.Getenv("APP_ENV")
	if "" == env {
		env = "development"
	}

	godotenv.Load(".env." + env + ".local")

	if "test" != env {
		godotenv.Load(".env.local")
	}
	godotenv.Load(".env." + env)
	godotenv.Load()
}
