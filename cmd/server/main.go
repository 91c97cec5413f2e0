// Command server wires the funding ledger's dependencies and runs the HTTP
// API together with the audit relay. Business logic lives in the internal
// service packages; this file only chooses implementations and connects them.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"galang/internal/audit"
	auditmemory "galang/internal/audit/store/memory"
	auditpostgres "galang/internal/audit/store/postgres"
	auditworker "galang/internal/audit/worker"
	campaignhandler "galang/internal/campaign/handler"
	campaignmetrics "galang/internal/campaign/metrics"
	campaignservice "galang/internal/campaign/service"
	campaignstore "galang/internal/campaign/store"
	donationhandler "galang/internal/donation/handler"
	donationmetrics "galang/internal/donation/metrics"
	donationservice "galang/internal/donation/service"
	donationstore "galang/internal/donation/store"
	"galang/internal/jwtauth"
	"galang/internal/platform/config"
	"galang/internal/platform/httpserver"
	"galang/internal/platform/logger"
	redisplatform "galang/internal/platform/redis"
	reporthandler "galang/internal/report/handler"
	reportmetrics "galang/internal/report/metrics"
	reportservice "galang/internal/report/service"
	reportstore "galang/internal/report/store"
	httptransport "galang/internal/transport/http"
	verificationhandler "galang/internal/verification/handler"
	verificationservice "galang/internal/verification/service"
	verificationstore "galang/internal/verification/store"
	withdrawalhandler "galang/internal/withdrawal/handler"
	withdrawalmetrics "galang/internal/withdrawal/metrics"
	withdrawalservice "galang/internal/withdrawal/service"
	withdrawalstore "galang/internal/withdrawal/store"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage. Postgres when configured, in-memory otherwise.
	var (
		db         *sql.DB
		campaignTx campaignservice.CampaignTx
		auditStore audit.Store
		outbox     *auditpostgres.Store

		campaignStore     campaignservice.Store
		donationStore     donationservice.Store
		withdrawalStore   withdrawalservice.Store
		verificationStore verificationservice.Store
		reportStore       reportservice.Store
	)
	if cfg.PostgresURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			log.Error("failed to open postgres", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("failed to reach postgres", "error", err.Error())
			os.Exit(1)
		}

		campaignTx = newCampaignPostgresTx(db)
		outbox = auditpostgres.New(db)
		auditStore = outbox
		campaignStore = campaignstore.NewPostgres(db)
		donationStore = donationstore.NewPostgres(db)
		withdrawalStore = withdrawalstore.NewPostgres(db)
		verificationStore = verificationstore.NewPostgres(db)
		reportStore = reportstore.NewPostgres(db)
	} else {
		log.Warn("no postgres configured, using in-memory stores")
		campaignTx = campaignservice.NewShardedTx()
		auditStore = auditmemory.New()
		campaignStore = campaignstore.NewInMemory()
		donationStore = donationstore.NewInMemory()
		withdrawalStore = withdrawalstore.NewInMemory()
		verificationStore = verificationstore.NewInMemory()
		reportStore = reportstore.NewInMemory()
	}

	redisClient, err := redisplatform.New(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err.Error())
		os.Exit(1)
	}
	var tokenStore donationservice.TokenStore
	if redisClient != nil {
		defer redisClient.Close()
		tokenStore = donationstore.NewRedisTokens(redisClient)
	} else {
		log.Warn("no redis configured, using in-memory token store")
		tokenStore = donationstore.NewInMemoryTokens()
	}

	auditPub := audit.NewPublisher(auditStore, log)

	verifications := verificationservice.New(verificationStore,
		verificationservice.WithLogger(log),
		verificationservice.WithAuditPublisher(auditPub),
	)
	campaigns := campaignservice.New(campaignStore, verifications, campaignTx,
		campaignservice.WithLogger(log),
		campaignservice.WithMetrics(campaignmetrics.New()),
		campaignservice.WithAuditPublisher(auditPub),
		campaignservice.WithReservationSummer(withdrawalStore),
		campaignservice.WithConfirmedCounter(donationStore),
	)
	donations := donationservice.New(donationStore, campaigns, campaignTx, tokenStore,
		donationservice.WithLogger(log),
		donationservice.WithMetrics(donationmetrics.New()),
		donationservice.WithAuditPublisher(auditPub),
		donationservice.WithMinAmount(cfg.MinDonationAmount),
		donationservice.WithIntentTTL(cfg.IntentTTL),
	)
	withdrawals := withdrawalservice.New(withdrawalStore, campaigns, campaignTx,
		withdrawalservice.WithLogger(log),
		withdrawalservice.WithMetrics(withdrawalmetrics.New()),
		withdrawalservice.WithAuditPublisher(auditPub),
		withdrawalservice.WithMinAmount(cfg.MinWithdrawalAmount),
	)
	reports := reportservice.New(reportStore, campaigns, verifications,
		reportservice.WithLogger(log),
		reportservice.WithMetrics(reportmetrics.New()),
		reportservice.WithAuditPublisher(auditPub),
	)

	tokens := jwtauth.New(cfg.JWTSigningKey)

	router := httptransport.NewRouter(httptransport.Handlers{
		Campaigns: campaignhandler.New(campaigns, log),
		Donations: donationhandler.New(donations, log,
			donationhandler.WithWebhookSecretHash(cfg.WebhookSecretHash)),
		Withdrawals:   withdrawalhandler.New(withdrawals, log),
		Verifications: verificationhandler.New(verifications, log),
		Reports:       reporthandler.New(reports, log),
	}, tokens, log, func() error {
		if db != nil {
			return db.Ping()
		}
		return nil
	})

	srv := httpserver.New(cfg.Addr, router)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if len(cfg.KafkaBrokers) > 0 && outbox != nil {
		kafkaClient, err := auditworker.NewClient(cfg.KafkaBrokers)
		if err != nil {
			log.Error("failed to build kafka client", "error", err.Error())
			os.Exit(1)
		}
		defer kafkaClient.Close()
		relay := auditworker.New(outbox, kafkaClient, cfg.AuditTopic, log)
		group.Go(func() error {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
	log.Info("server stopped")
}
