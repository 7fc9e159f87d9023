package app

import (
	"context"
	"fmt"

	"github.com/amankumarsingh77/slideshow-encoder/internal/config"
	"github.com/amankumarsingh77/slideshow-encoder/internal/slideshow"
	"github.com/amankumarsingh77/slideshow-encoder/internal/slideshow/repository"
	"github.com/amankumarsingh77/slideshow-encoder/internal/slideshow/usecase"
	"github.com/amankumarsingh77/slideshow-encoder/internal/worker"
	awsclient "github.com/amankumarsingh77/slideshow-encoder/pkg/db/aws"
	minioclient "github.com/amankumarsingh77/slideshow-encoder/pkg/db/minio"
	redisclient "github.com/amankumarsingh77/slideshow-encoder/pkg/db/redis"
	"github.com/amankumarsingh77/slideshow-encoder/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/minio/minio-go/v7"
)

// dependencyInjector builds every component on first use. Fields set before
// the first call are kept, which lets tests swap in fakes.
type dependencyInjector struct {
	cfg    *config.Config
	logger logger.Logger

	redis         *redis.Client
	s3Client      *s3.Client
	presignClient *s3.PresignClient
	minioClient   *minio.Client

	notifier      slideshow.StatusNotifier
	jobStore      slideshow.JobStore
	artifactStore slideshow.ArtifactStore
	fetcher       slideshow.Fetcher
	runner        worker.CommandRunner
	staging       *worker.Staging
	pipeline      *worker.Pipeline
	usecase       slideshow.UseCase
}

func newDI(cfg *config.Config, log logger.Logger) *dependencyInjector {
	return &dependencyInjector{cfg: cfg, logger: log}
}

func (di *dependencyInjector) RedisClient(ctx context.Context) (*redis.Client, error) {
	if di.redis == nil {
		client, err := redisclient.NewRedisClient(ctx, di.cfg)
		if err != nil {
			return nil, fmt.Errorf("redis connect: %w", err)
		}
		di.redis = client
		di.logger.Infof("connected to redis at %s", di.cfg.Redis.RedisAddr)
	}
	return di.redis, nil
}

func (di *dependencyInjector) S3Client(ctx context.Context) (*s3.Client, *s3.PresignClient, error) {
	if di.s3Client == nil {
		cfg := di.cfg.S3
		client, presign, err := awsclient.NewAWSClient(ctx, cfg.Endpoint, cfg.Region, cfg.AccessKey, cfg.SecretKey)
		if err != nil {
			return nil, nil, err
		}
		di.s3Client, di.presignClient = client, presign
	}
	return di.s3Client, di.presignClient, nil
}

func (di *dependencyInjector) MinIOClient(ctx context.Context) (*minio.Client, error) {
	if di.minioClient == nil {
		cfg := di.cfg.MinIO
		client, err := minioclient.NewClient(ctx, minioclient.Config{
			Endpoint:        cfg.Endpoint,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			UseSSL:          cfg.UseSSL,
			Bucket:          cfg.Bucket,
		})
		if err != nil {
			return nil, err
		}
		di.minioClient = client
		di.logger.Infof("initialized MinIO store endpoint=%s bucket=%s", cfg.Endpoint, cfg.Bucket)
	}
	return di.minioClient, nil
}

func (di *dependencyInjector) Notifier(ctx context.Context) (slideshow.StatusNotifier, error) {
	if di.notifier == nil {
		if !di.cfg.Redis.Enabled {
			di.notifier = repository.NewNopNotifier()
			return di.notifier, nil
		}
		client, err := di.RedisClient(ctx)
		if err != nil {
			return nil, err
		}
		di.notifier = repository.NewRedisNotifier(client, di.cfg.Redis.Channel)
	}
	return di.notifier, nil
}

func (di *dependencyInjector) JobStore(ctx context.Context) (slideshow.JobStore, error) {
	if di.jobStore == nil {
		notifier, err := di.Notifier(ctx)
		if err != nil {
			return nil, err
		}
		di.jobStore = repository.NewMemoryJobStore(notifier, di.logger)
	}
	return di.jobStore, nil
}

func (di *dependencyInjector) ArtifactStore(ctx context.Context) (slideshow.ArtifactStore, error) {
	if di.artifactStore == nil {
		st := di.cfg.Storage
		switch st.Driver {
		case "minio":
			client, err := di.MinIOClient(ctx)
			if err != nil {
				return nil, err
			}
			di.artifactStore = repository.NewMinIOArtifactStore(client, di.cfg.MinIO.Bucket, st.URLExpiry, st.PublicBaseURL)
		case "s3":
			if di.cfg.S3.Bucket == "" {
				return nil, fmt.Errorf("s3.bucket is empty")
			}
			client, presign, err := di.S3Client(ctx)
			if err != nil {
				return nil, err
			}
			di.artifactStore = repository.NewAwsArtifactStore(client, presign, di.cfg.S3.Bucket, st.URLExpiry, st.PublicBaseURL)
		default:
			return nil, fmt.Errorf("unknown storage driver %q", st.Driver)
		}
		di.logger.Infof("artifact store: %s", st.Driver)
	}
	return di.artifactStore, nil
}

// Fetcher resolves s3:// sources only when S3 is the configured store.
func (di *dependencyInjector) Fetcher(ctx context.Context) (slideshow.Fetcher, error) {
	if di.fetcher == nil {
		var client *s3.Client
		if di.cfg.Storage.Driver == "s3" {
			c, _, err := di.S3Client(ctx)
			if err != nil {
				return nil, err
			}
			client = c
		}
		di.fetcher = repository.NewSourceFetcher(di.cfg.Fetch.Timeout, client, di.cfg.Fetch.AllowLocal)
	}
	return di.fetcher, nil
}

func (di *dependencyInjector) Runner() worker.CommandRunner {
	if di.runner == nil {
		di.runner = &worker.ExecRunner{}
	}
	return di.runner
}

func (di *dependencyInjector) Staging() *worker.Staging {
	if di.staging == nil {
		di.staging = worker.NewStaging(di.cfg.Staging.Dir)
	}
	return di.staging
}

// Pipeline binds jobs to ctx, so it must be the service lifetime context.
func (di *dependencyInjector) Pipeline(ctx context.Context) (*worker.Pipeline, error) {
	if di.pipeline == nil {
		store, err := di.JobStore(ctx)
		if err != nil {
			return nil, err
		}
		artifacts, err := di.ArtifactStore(ctx)
		if err != nil {
			return nil, err
		}
		fetcher, err := di.Fetcher(ctx)
		if err != nil {
			return nil, err
		}

		cfg := di.cfg
		runner := di.Runner()
		staging := di.Staging()
		di.pipeline = worker.NewPipeline(ctx, worker.PipelineDeps{
			Store:    store,
			Acquirer: worker.NewAcquirer(fetcher, staging),
			Normalizer: worker.NewNormalizer(runner, staging, worker.NormalizeOptions{
				MogrifyPath: cfg.Normalize.MogrifyPath,
				Width:       cfg.Render.Width,
				Height:      cfg.Render.Height,
				Background:  cfg.Render.Background,
			}),
			Renderer: worker.NewRenderer(runner, worker.RenderOptions{
				FFmpegPath:       cfg.Render.FFmpegPath,
				Timeout:          cfg.Render.Timeout,
				MaxConcurrent:    cfg.Worker.MaxConcurrentRenders,
				MaxCPUUsage:      cfg.Worker.MaxCPUUsage,
				CPUCheckInterval: cfg.Worker.CPUCheckInterval,
			}, di.logger),
			Publisher: worker.NewPublisher(artifacts, cfg.Storage.Prefix),
			Staging:   staging,
			Encode: worker.EncodeOptions{
				VideoCodec:  cfg.Render.VideoCodec,
				PixelFormat: cfg.Render.PixelFormat,
				FrameRate:   cfg.Render.FrameRate,
			},
			Logger: di.logger,
		})
	}
	return di.pipeline, nil
}

func (di *dependencyInjector) Usecase(ctx context.Context) (slideshow.UseCase, error) {
	if di.usecase == nil {
		store, err := di.JobStore(ctx)
		if err != nil {
			return nil, err
		}
		pipeline, err := di.Pipeline(ctx)
		if err != nil {
			return nil, err
		}
		di.usecase = usecase.NewSlideshowUseCase(store, pipeline, di.cfg.Fetch.AllowLocal, di.logger)
	}
	return di.usecase, nil
}

func (di *dependencyInjector) Close() error {
	if di.redis != nil {
		return di.redis.Close()
	}
	return nil
}
