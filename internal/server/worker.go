package server

import (
	"context"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"enbapp/internal/enbapi"
)

var AppWorker *enbapi.AppWorker

const TaskLeaderboardSnapshot = "leaderboard:snapshot"

func WorkerInit() { // Run Background Worker
	AppWorker = enbapi.InitWorker()
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskLeaderboardSnapshot, handleLeaderboardSnapshot)

	if _, err := AppWorker.Sched.Register(
		"@every 5m",
		asynq.NewTask(TaskLeaderboardSnapshot, nil),
		asynq.Queue("snapshots"),
	); err != nil {
		log.Fatal("Failed to register snapshot task: ", err)
	}
	go func() {
		if err := AppWorker.Sched.Run(); err != nil {
			log.Fatal("Failed to run scheduler: ", err)
		}
	}()
	fmt.Println("[ ENB Worker is up ]")
	if err := AppWorker.Aqs.Run(mux); err != nil {
		log.Fatal("Failed to run worker: ", err)
	}
}

// handleLeaderboardSnapshot rebuilds the top of each leaderboard and
// caches it, so the leaderboard routes rarely hit the database.
func handleLeaderboardSnapshot(ctx context.Context, t *asynq.Task) error {
	limit := enbapi.CurrentAppConfig.Settings.Limits.LeaderboardMax
	for _, metric := range []string{
		enbapi.MetricBalance,
		enbapi.MetricEarnings,
		enbapi.MetricStreaks,
	} {
		entries, err := enbapi.BuildLeaderboard(AppWorker.Db, metric, limit)
		if err != nil {
			return err
		}
		if err := enbapi.CacheLeaderboard(AppWorker.Rdb, metric, entries); err != nil {
			return err
		}
		fmt.Printf("[[Snapshot]] cached %d entries for %s\n", len(entries), metric)
	}
	return nil
}
