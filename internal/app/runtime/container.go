package runtime

import (
	"context"

	"payja-lending/internal/pkg/cleanup"
	"payja-lending/internal/pkg/config"
	"payja-lending/internal/pkg/db/mongo"
	"payja-lending/internal/pkg/db/redis"
	"payja-lending/internal/pkg/downstream/bank"
	"payja-lending/internal/pkg/downstream/retry"
	"payja-lending/internal/pkg/downstream/wallet"
	"payja-lending/internal/pkg/events"
	"payja-lending/internal/pkg/gcs"
	"payja-lending/internal/pkg/kafka"
	"payja-lending/internal/pkg/log_messages"
	"payja-lending/internal/pkg/logger"
	"payja-lending/internal/pkg/notification"
	"payja-lending/internal/pkg/otel"
	"payja-lending/internal/pkg/pubsub"
	"payja-lending/internal/pkg/sftp"
	bankpartners "payja-lending/internal/pkg/store/impl/bank_partners"
	bankrecords "payja-lending/internal/pkg/store/impl/bank_records"
	"payja-lending/internal/pkg/store/impl/customers"
	"payja-lending/internal/pkg/store/impl/installments"
	"payja-lending/internal/pkg/store/impl/loans"
	scoringresults "payja-lending/internal/pkg/store/impl/scoring_results"
	"payja-lending/internal/pkg/store/impl/sessions"
	"payja-lending/internal/pkg/store/impl/transactions"
	"payja-lending/internal/pkg/store/repository"
	"payja-lending/internal/pkg/utils/worker"
	"payja-lending/internal/service/banksync"
	"payja-lending/internal/service/crossvalidation"
	"payja-lending/internal/service/ledger"
	loansvc "payja-lending/internal/service/loans"
	"payja-lending/internal/service/overdue"
	"payja-lending/internal/service/scoring"
	"payja-lending/internal/service/session"
	"payja-lending/internal/service/settlement"
)

var (
	loadConfig     = config.LoadFromConfig
	setupTracing   = otel.Setup
	connectMongoDB = mongo.ConnectToMongoDB
	connectRedisDB = func(ctx context.Context, cfg config.RedisConfig) (*redis.RedisClient, error) {
		return redis.ConnectToRedis(ctx, cfg, nil)
	}
	newKafkaProducer = kafka.NewKafkaProducer
	newGCSClient     = func(ctx context.Context, cfg config.GCSConfig) (*gcs.GCSClient, error) {
		return gcs.NewGCSClient(ctx, cfg)
	}
)

// Container holds the connected infrastructure and the services built on it.
// The HTTP server and the ops CLI share it.
type Container struct {
	Cfg *config.AppConfig

	MongoClient     *mongo.MongoClient
	RedisClient     *redis.RedisClient
	KafkaProducer   *kafka.KafkaProducer
	PubSubPublisher *pubsub.PubSubPublisher
	GCSClient       *gcs.GCSClient
	WorkerPool      *worker.WorkerPool
	TracerShutdown  func(context.Context) error

	Gateway    *loansvc.LoanGatewayService
	Settlement *settlement.SettlementService
	Engine     *session.SessionEngine
	Sweep      *overdue.SweepService
	Ledger     *ledger.ExportService
	BankSync   *banksync.SyncService
}

// Build loads the configuration, connects every backing store and wires the services.
// On failure everything connected so far is released.
func Build(ctx context.Context) (c *Container, err error) {
	cfg, err := loadConfig()
	if err != nil {
		logger.CtxError(ctx, log_messages.FailedLoadingConfiguration, err)
		return nil, err
	}
	logger.Init(cfg.Logging.LogLevel, cfg.Service.Name)

	c = &Container{Cfg: cfg}
	defer func() {
		if err != nil {
			c.Close(ctx)
			c = nil
		}
	}()

	if c.TracerShutdown, err = setupTracing(ctx, cfg.Service.Name, cfg.Service.OtelCollectorURL); err != nil {
		logger.CtxError(ctx, "Failed to set up tracing", err)
		return c, err
	}

	if c.MongoClient, err = connectMongoDB(ctx, cfg.Mongo); err != nil {
		logger.CtxError(ctx, "Failed to connect to MongoDB", err)
		return c, err
	}
	if err = c.MongoClient.EnsureIndexes(ctx); err != nil {
		logger.CtxError(ctx, "Failed to ensure MongoDB indexes", err)
		return c, err
	}

	if c.RedisClient, err = connectRedisDB(ctx, cfg.Redis); err != nil {
		logger.CtxError(ctx, "Failed to connect to Redis", err)
		return c, err
	}

	if c.KafkaProducer, err = newKafkaProducer(cfg.Kafka); err != nil {
		logger.CtxError(ctx, "Failure in Kafka producer creation", err)
		return c, err
	}
	logger.CtxInfo(ctx, log_messages.KafkaProducerCreated)

	if c.PubSubPublisher, err = pubsub.NewPubSubPublisher(ctx, cfg.PubSub.ProjectID); err != nil {
		logger.CtxError(ctx, "Failure in PubSub publisher creation", err)
		return c, err
	}
	logger.CtxInfo(ctx, log_messages.PubsubPublisherCreated)

	if cfg.GCS.BucketName != "" {
		if c.GCSClient, err = newGCSClient(ctx, cfg.GCS); err != nil {
			logger.CtxError(ctx, "Failed to create GCS client", err)
			return c, err
		}
	}

	c.WorkerPool = worker.NewWorkerPool(cfg.WorkerPool.Size)

	if err = c.wire(); err != nil {
		return c, err
	}
	return c, nil
}

func (c *Container) wire() error {
	cfg := c.Cfg
	policy := retry.FromConfig(cfg.Retry)

	sessionRepo := sessions.NewSessionRepository(c.MongoClient)
	customerRepo := customers.NewCustomerRepository(c.MongoClient)
	loanRepo := loans.NewLoanRepository(c.MongoClient)
	transactionRepo := transactions.NewTransactionRepository(c.MongoClient)
	installmentRepo := installments.NewInstallmentRepository(c.MongoClient)
	scoringRepo := scoringresults.NewScoringResultRepository(c.MongoClient)
	partnerRepo := bankpartners.NewBankPartnerRepository(c.MongoClient)
	recordRepo := bankrecords.NewBankRecordRepository(c.MongoClient)

	redisStore := repository.NewRedisStoreAdapter(c.RedisClient.Client)
	banks := bank.NewRegistry(partnerRepo, policy)
	emola := wallet.NewEmolaClient(cfg.Wallet, policy)
	sms := notification.NewSmsNotifier(c.PubSubPublisher, cfg.PubSub.SmsTopic, c.WorkerPool)
	loanEvents := events.NewLoanEventPublisher(c.KafkaProducer, c.WorkerPool)

	gateway, err := loansvc.NewLoanGatewayService(
		loanRepo,
		installmentRepo,
		scoring.NewScoringService(scoringRepo, banks),
		banks,
		sms,
		loanEvents,
		cfg.Loan,
		cfg.Commission,
	)
	if err != nil {
		logger.Error("Failed to build loan gateway", err)
		return err
	}
	c.Gateway = gateway

	settlementDeps := settlement.Dependencies{
		Loans:        loanRepo,
		Transactions: transactionRepo,
		Installments: installmentRepo,
		Locks:        redisStore,
		Banks:        banks,
		Wallet:       emola,
		Status:       gateway,
		Sms:          sms,
		Events:       loanEvents,
	}
	if c.GCSClient != nil {
		settlementDeps.Archive = c.GCSClient
	}
	c.Settlement = settlement.NewSettlementService(settlementDeps, cfg.Settlement)

	sessionDeps := session.Dependencies{
		Sessions:    sessionRepo,
		Customers:   customerRepo,
		Banks:       partnerRepo,
		Transactor:  c.MongoClient,
		ReplyCache:  redisStore,
		Validator:   crossvalidation.NewCrossValidationService(recordRepo, cfg.CrossValidation),
		Subscribers: emola,
		Loans:       gateway,
		Disburser:   c.Settlement,
		Sms:         sms,
	}
	c.Engine = session.NewSessionEngine(sessionDeps, cfg.Session, cfg.Loan)

	c.Sweep = overdue.NewSweepService(installmentRepo, loanRepo, gateway, sms, loanEvents)
	c.Ledger = ledger.NewExportService(transactionRepo, sftp.NewUploader(cfg.SFTP), cfg.Service.Location())
	c.BankSync = banksync.NewSyncService(banks, partnerRepo, recordRepo)
	return nil
}

// Close releases every resource the container opened.
func (c *Container) Close(ctx context.Context) {
	cleanup.CleanupResources(ctx, c.resources())
}

func (c *Container) resources() cleanup.Resources {
	r := cleanup.Resources{
		WorkerPool:     c.WorkerPool,
		KafkaProducer:  c.KafkaProducer,
		MongoClient:    c.MongoClient,
		RedisClient:    c.RedisClient,
		TracerShutdown: c.TracerShutdown,
	}
	// a typed nil would defeat the nil checks in cleanup
	if c.PubSubPublisher != nil {
		r.PubSubPublisher = c.PubSubPublisher
	}
	if c.GCSClient != nil {
		r.GCSClient = c.GCSClient
	}
	return r
}
