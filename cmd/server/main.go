package main

import (
	"context"
	"log"
	"os"
	"time"

	"autoupgrader/internal/adapter/game/sim"
	httpadapter "autoupgrader/internal/adapter/http"
	"autoupgrader/internal/adapter/metrics"
	metricsinmem "autoupgrader/internal/adapter/metrics/inmemory"
	"autoupgrader/internal/adapter/metrics/prom"
	"autoupgrader/internal/adapter/notify"
	gormrepo "autoupgrader/internal/adapter/repo/gorm"
	"autoupgrader/internal/adapter/repo/memory"
	"autoupgrader/internal/app/interact"
	"autoupgrader/internal/app/policy"
	"autoupgrader/internal/app/ports"
	"autoupgrader/internal/app/roster"
	"autoupgrader/internal/app/status"
	"autoupgrader/internal/app/upgrade"
	"autoupgrader/internal/config"
	"autoupgrader/internal/domain/bestiary"
	platformotel "autoupgrader/internal/platform/otel"

	"github.com/cloudwego/hertz/pkg/app/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := log.New(os.Stderr, "autoupgrader ", log.LstdFlags)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := platformotel.Setup(ctx, "autoupgrader", cfg.OTELEndpoint)
	if err != nil {
		log.Fatalf("setup tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("shutdown tracing: %v", err)
		}
	}()

	policyRepo, txManager := mustBuildRepos(ctx, cfg)

	seed, err := config.LoadSeedFile(cfg.SeedFile)
	if err != nil {
		log.Fatalf("load seed: %v", err)
	}
	collection := sim.NewCollection(seed)
	fortress := sim.NewFortress(collection, sim.FortressOptions{
		RenderDelay: cfg.SimRenderDelay,
		ResultDelay: cfg.SimResultDelay,
	})

	feed := notify.NewFeed(cfg.NotificationBuffer)
	notifier := notify.Fanout{notify.Log{Logger: logger}, feed}
	kpiRecorder := metricsinmem.NewRecorder()
	promRecorder, err := prom.NewRecorder()
	if err != nil {
		log.Fatalf("register metrics: %v", err)
	}

	store := upgrade.NewPolicyStore(bestiary.DefaultPolicy())
	sequencer := upgrade.Sequencer{
		Snapshots: collection,
		Policy:    store,
		Driver: interact.Driver{
			Host:       fortress,
			Strategies: sim.Strategies(fortress),
			Timing:     timingFromConfig(cfg),
			Logger:     logger,
		},
		Notifier:    notifier,
		Metrics:     metrics.Fanout{kpiRecorder, promRecorder},
		Logger:      logger,
		SettleDelay: zeroDisables(cfg.SettleDelay),
		MaxFodder:   cfg.MaxFodder,
	}
	queue := upgrade.NewQueue(ctx, func(ctx context.Context, speciesID bestiary.SpeciesID) {
		sequencer.Run(ctx, speciesID)
	}, upgrade.QueueOptions{Cooldown: zeroDisables(cfg.Cooldown), Logger: logger})
	monitor := upgrade.NewMonitor(collection, store, queue, logger)

	policyUC := policy.UseCase{
		Store:     store,
		Repo:      policyRepo,
		TxManager: txManager,
		Monitor:   monitor,
		Notifier:  notifier,
		Snapshots: collection,
		Queue:     queue,
		ProfileID: cfg.ProfileID,
		Logger:    logger,
	}
	base, err := config.LoadPolicyFile(cfg.PolicyFile, bestiary.DefaultPolicy())
	if err != nil {
		log.Fatalf("load policy file: %v", err)
	}
	if _, err := policyUC.Bootstrap(ctx, base); err != nil {
		log.Fatalf("bootstrap policy: %v", err)
	}

	h := httpadapter.Handler{
		PolicyUC: policyUC,
		RosterUC: roster.UseCase{Snapshots: collection, Policy: store},
		StatusUC: status.UseCase{
			Queue:   queue,
			Monitor: monitor,
			Policy:  store,
			KPI:     kpiRecorder,
		},
		Notifications: feed,
		Sim:           collection,
		KPI:           kpiRecorder,
		Metrics:       promRecorder.Handler(),
	}

	s := server.Default(server.WithHostPorts(cfg.HTTPAddr))
	h.RegisterRoutes(s)

	log.Printf("autoupgrader listening on %s (profile %q, %d seeded monsters)", cfg.HTTPAddr, cfg.ProfileID, len(seed))
	s.Spin()

	monitor.Stop()
	if err := queue.Close(); err != nil {
		log.Printf("close queue: %v", err)
	}
}

func mustBuildRepos(ctx context.Context, cfg config.Config) (ports.PolicyRepository, ports.TxManager) {
	if cfg.DBDSN == "" {
		log.Println("AUTOUPGRADER_DB_DSN not set, policy changes are kept in memory only")
		store := memory.NewStore()
		return memory.NewPolicyRepo(store), memory.NewTxManager(store)
	}
	db, err := gormrepo.OpenPostgres(cfg.DBDSN)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	if err := gormrepo.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("apply migrations from %s: %v", cfg.MigrationsDir, err)
	}
	return gormrepo.NewPolicyRepo(db), gormrepo.NewTxManager(db)
}

func timingFromConfig(cfg config.Config) interact.Timing {
	return interact.Timing{
		PollInterval:    cfg.PollInterval,
		OpenAttempts:    cfg.OpenPollAttempts,
		ConfirmAttempts: cfg.ConfirmPollAttempts,
	}
}

// zeroDisables maps an explicit zero delay to the "disabled" value the
// upgrade package expects; zero there means "use the default".
func zeroDisables(d time.Duration) time.Duration {
	if d == 0 {
		return -1
	}
	return d
}
