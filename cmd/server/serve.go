package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"linkedlist/api/grpcserver"
	"linkedlist/config"
	"linkedlist/domain/list"
	"linkedlist/infra/kafka"
	"linkedlist/infra/outbox"
	"linkedlist/infra/sequence"
	"linkedlist/infra/wal"
	"linkedlist/jobs/broadcaster"
	"linkedlist/metrics"
	"linkedlist/service"
	"linkedlist/snapshot"
)

// ServeCmd is the cobra command that corresponds to the serve subcommand.
var ServeCmd = &cobra.Command{
	Use:   "serve [config]",
	Short: "`serve` restores the lists and serves them over gRPC",
	Long:  "`serve` restores the lists from the snapshot and mutation log, then serves them over gRPC.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfiguration(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
			// nolint:errcheck
			cmd.Usage()
			os.Exit(1)
		}
		if err := configureLogging(cfg.Log); err != nil {
			fmt.Fprintf(os.Stderr, "unable to configure logging with config: %s\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := serve(ctx, cfg); err != nil {
			log.Fatalln(err)
		}
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	// ---------------- Mutation log ----------------

	mutationLog, err := wal.Open(wal.Config{
		Dir:             cfg.WAL.Dir,
		SegmentSize:     cfg.WAL.SegmentSize,
		SegmentDuration: cfg.WAL.SegmentDuration,
		SyncEveryWrite:  cfg.WAL.SyncEveryWrite,
	})
	if err != nil {
		return fmt.Errorf("mutation log init failed: %w", err)
	}
	defer mutationLog.Close()

	// ---------------- Snapshot store ----------------

	snaps, err := snapshot.Open(cfg.Snapshot.Dir)
	if err != nil {
		return err
	}
	defer snaps.Close()

	// ---------------- Outbox ----------------

	var ob *outbox.Outbox
	if cfg.Kafka.Enabled {
		ob, err = outbox.Open(cfg.Outbox.Dir)
		if err != nil {
			return err
		}
		defer ob.Close()
	}

	// ---------------- Service ----------------

	m := metrics.New()
	svc := service.NewListService(service.Deps{
		Seq:       sequence.New(0),
		WAL:       mutationLog,
		Snapshots: snaps,
		Outbox:    ob,
		Metrics:   m,
		Allocator: list.NewPoolAllocator[int16](cfg.Memory.NodeBudget),
	})
	defer svc.Close()

	if err := svc.Restore(); err != nil {
		return err
	}

	// ---------------- Background Jobs ----------------

	ctx, cancel := context.WithCancel(ctx)
	var jobs sync.WaitGroup
	defer func() {
		cancel()
		jobs.Wait()
	}()

	jobs.Add(1)
	go func() {
		defer jobs.Done()
		svc.RunSnapshotJob(ctx, cfg.Snapshot.Interval)
	}()

	if cfg.Kafka.Enabled {
		pub, err := kafka.New(kafka.Config{
			Driver:     cfg.Kafka.Driver,
			Brokers:    cfg.Kafka.Brokers,
			Topic:      cfg.Kafka.Topic,
			MaxRetries: cfg.Kafka.MaxRetries,
		})
		if err != nil {
			return fmt.Errorf("kafka init failed: %w", err)
		}
		bc := broadcaster.New(ob, pub, cfg.Kafka.Interval, uint32(cfg.Kafka.MaxRetries))
		defer bc.Close()
		jobs.Add(1)
		go func() {
			defer jobs.Done()
			bc.Run(ctx)
		}()
	}

	if cfg.Metrics.Addr != "" {
		metricsSrv := &http.Server{Addr: cfg.Metrics.Addr, Handler: m.Handler()}
		go func() {
			log.Infof("metrics listening on %v", cfg.Metrics.Addr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("metrics server exited")
			}
		}()
		defer metricsSrv.Close()
	}

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		return fmt.Errorf("listen failed: %w", err)
	}

	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(grpcserver.UnaryLogger()))
	grpcserver.RegisterListServiceServer(grpcSrv, grpcserver.NewServer(svc))

	go func() {
		<-ctx.Done()
		grpcSrv.GracefulStop()
	}()

	log.Infof("listening on %v", cfg.GRPC.Addr)
	// ErrServerStopped means the stop came before Serve, e.g. a signal
	// during Restore. That is still a clean shutdown.
	if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("gRPC server exited: %w", err)
	}

	// final snapshot so the next start replays nothing
	if _, err := svc.Snapshot(); err != nil {
		log.WithError(err).Warn("final snapshot failed")
	}
	return nil
}
