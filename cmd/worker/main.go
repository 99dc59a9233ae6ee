package main

import (
	"context"
	"log"
	"os"
	"vestiqapi/dbhelper"
	"vestiqapi/services"
	"vestiqapi/tasks"

	firebase "firebase.google.com/go/v4"
	"github.com/hibiken/asynq"
)

func runScheduler() {

	scheduler := asynq.NewScheduler(asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")}, &asynq.SchedulerOpts{

		LogLevel: asynq.InfoLevel,
	})

	pregenerate, err := tasks.NewPregenerateOutfitsTask()
	if err != nil {
		log.Fatalf("Failed to build pregenerate task: %v", err)
	}
	cleanup, err := tasks.NewCleanupExpiredOutfitsTask()
	if err != nil {
		log.Fatalf("Failed to build cleanup task: %v", err)
	}

	scheduled := []struct {
		cron string
		task *asynq.Task
		desc string
	}{
		{
			cron: "0 5 * * *", // 5:00 AM daily, before people get dressed
			task: pregenerate,
			desc: "Morning outfit pregeneration",
		},
		{
			cron: "30 3 * * *", // 3:30 AM daily
			task: cleanup,
			desc: "Expired outfit cleanup",
		},
	}

	for _, t := range scheduled {
		entryID, err := scheduler.Register(t.cron, t.task, asynq.Queue("outfits"))
		if err != nil {
			log.Fatalf("Failed to register task '%s': %v", t.desc, err)
		}
		log.Printf("Registered task '%s' with ID: %s, cron: %s", t.desc, entryID, t.cron)
	}

	log.Println("Starting scheduler...")
	if err := scheduler.Run(); err != nil {
		log.Fatalf("Scheduler failed: %v", err)
	}
}

func main() {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")},
		asynq.Config{Concurrency: 10, Queues: map[string]int{
			"generate": 7,
			"outfits":  3,
		}},
	)
	stylist := services.GeminiStylist{}
	weather := services.OpenWeatherService{}
	app, err := firebase.NewApp(context.Background(), nil)
	if err != nil {
		log.Fatalf("error initializing firebase app: %v\n", err)
		return
	}
	mux := asynq.NewServeMux()
	db := dbhelper.SetupDB()
	mux.HandleFunc("wardrobe:process_item", func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleProcessWardrobeItemTask(ctx, t, db, stylist, app)
	})
	mux.HandleFunc("outfits:first_auto", func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleFirstOutfitTask(ctx, t, db, stylist, weather, app)
	})
	mux.HandleFunc("outfits:pregenerate", func(ctx context.Context, t *asynq.Task) error {
		return tasks.ScheduledPregenerateTask(ctx, t, db, stylist, weather, app)
	})
	mux.HandleFunc("outfits:cleanup_expired", func(ctx context.Context, t *asynq.Task) error {
		return tasks.ScheduledCleanupExpiredOutfitsTask(ctx, t, db)
	})

	go runScheduler()
	if err := srv.Run(mux); err != nil {
		log.Fatal(err)
	}
}
