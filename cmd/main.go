package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "roomhub/docs"
	"roomhub/internal/config"
	"roomhub/internal/guard"
	"roomhub/internal/handlers"
	"roomhub/internal/logger"
	"roomhub/internal/relay"
	"roomhub/internal/repository"
	"roomhub/internal/repository/db"
	"roomhub/internal/server"
	"roomhub/internal/service"
	"roomhub/internal/telemetry"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml (default configs/config.yml)")
	seedPath := flag.String("seed", "", "optional JSON fixture of rooms and devices to upsert on start")
	flag.Parse()

	// bootstrap logger until the configured one exists
	log := logger.Get(logger.InfoLevel)

	// .env is optional; real env vars win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warnw("dotenv_load_failed", "err", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalw("error reading config", "err", err)
	}
	log = logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	// open DB
	conn, err := openDB(cfg.DB.Path, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos := repository.NewRepository(conn)
	if *seedPath != "" {
		if err := seed(ctx, *seedPath, repos, log); err != nil {
			log.Fatalw("failed to seed", "err", err)
		}
	}

	// wire dependencies
	tasks := service.NewTasks(log)
	controllers := service.NewControllerClient(service.ControllerClientConfig{
		DispatchPath: cfg.Dispatch.Path,
		ConfigPath:   cfg.ConfigPush.Path,
		Timeout:      max(cfg.Dispatch.Timeout, cfg.ConfigPush.Timeout),
	})

	firing, closeGuard, err := guard.New(ctx, cfg.Schedule.Dedup, guard.RedisOptions{
		Addr:      cfg.Redis.Addr,
		Password:  cfg.Redis.Password,
		DB:        cfg.Redis.DB,
		KeyPrefix: cfg.Redis.KeyPrefix,
	}, log)
	if err != nil {
		log.Fatalw("failed to init firing guard", "err", err)
	}
	defer func() { _ = closeGuard() }()

	sink, closeSinks := openSinks(ctx, cfg, log)
	defer closeSinks()

	loc, _ := cfg.Schedule.Location() // checked by config.Validate
	services := service.NewService(repos, service.Deps{
		Dispatcher:  service.NewAsyncDispatcher(controllers, tasks, cfg.Dispatch.Timeout),
		Pusher:      controllers,
		Tasks:       tasks,
		Guard:       firing,
		Sink:        sink,
		Location:    loc,
		PushTimeout: cfg.ConfigPush.Timeout,
		Log:         log,
	})

	// camera relay lives as long as the process
	cameras := relay.New(relay.Config{
		ViewerBuffer:    cfg.Camera.ViewerBuffer,
		WriteTimeout:    cfg.Camera.WriteTimeout,
		PongWait:        cfg.Camera.PongWait,
		MaxMessageBytes: cfg.Camera.MaxMessageBytes,
	}, log.With("component", "camera_relay"))
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		cameras.Run(ctx)
	}()

	apiHandler := handlers.NewHandler(services, cameras, log)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg, apiHandler.InitRoutes(cfg.Camera.Path), log)

	// graceful shutdown
	waitForShutdown(cfg, cancel, srv, relayDone, tasks, log)
}

// openDB initializes the SQLite database at path.
func openDB(path string, log *logger.Logger) (*sql.DB, error) {
	log.Infow("opening sqlite", "path", path)
	return db.InitDB(path)
}

func seed(ctx context.Context, path string, repos *repository.Repository, log *logger.Logger) error {
	fx, err := repository.LoadFixture(path)
	if err != nil {
		return err
	}
	if err := fx.Apply(ctx, repos); err != nil {
		return err
	}
	log.Infow("seed_applied", "path", path, "rooms", len(fx.Rooms), "devices", len(fx.Devices))
	return nil
}

// openSinks connects the enabled telemetry backends. A backend that cannot be
// reached is logged and left out; ingest never depends on it.
func openSinks(ctx context.Context, cfg *config.Config, log *logger.Logger) (service.DataSink, func()) {
	var (
		sinks   telemetry.Multi
		closers []func()
	)

	if cfg.MQTT.Enabled {
		client, err := telemetry.ConnectMQTT(telemetry.MQTTConfig{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
			TopicPrefix: cfg.MQTT.TopicPrefix,
			QoS:         byte(cfg.MQTT.QoS),
		})
		if err != nil {
			log.Warnw("mqtt_sink_disabled", "err", err)
		} else {
			sinks = append(sinks, telemetry.NewMQTTSink(client, cfg.MQTT.TopicPrefix, byte(cfg.MQTT.QoS)))
			closers = append(closers, func() { client.Disconnect(250) })
			log.Infow("mqtt_sink_enabled", "broker", cfg.MQTT.Broker)
		}
	}

	if cfg.InfluxDB.Enabled {
		sink, closeInflux, err := telemetry.ConnectInflux(ctx, telemetry.InfluxConfig{
			URL:    cfg.InfluxDB.URL,
			Token:  cfg.InfluxDB.Token,
			Org:    cfg.InfluxDB.Org,
			Bucket: cfg.InfluxDB.Bucket,
		}, log)
		if err != nil {
			log.Warnw("influx_sink_disabled", "err", err)
		} else {
			sinks = append(sinks, sink)
			closers = append(closers, closeInflux)
			log.Infow("influx_sink_enabled", "url", cfg.InfluxDB.URL)
		}
	}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	if len(sinks) == 0 {
		return nil, closeAll
	}
	return sinks, closeAll
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, cfg *config.Config, handler http.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "port", cfg.Server.Port)
		err := srv.Run(cfg.Server.Port, handler, server.Timeouts{
			ReadHeader: cfg.Server.ReadHeaderTimeout,
			Write:      cfg.Server.WriteTimeout,
			Idle:       cfg.Server.IdleTimeout,
		})
		if err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cfg *config.Config, cancel context.CancelFunc, srv *server.Server,
	relayDone <-chan struct{}, tasks *service.Tasks, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	ctx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// allow in-flight requests to complete
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}

	// close camera connections
	cancel()
	select {
	case <-relayDone:
	case <-ctx.Done():
	}

	// drain dispatches and config pushes
	if err := tasks.Wait(ctx); err != nil {
		log.Warnw("background tasks still running at shutdown", "err", err)
	}
	log.Infow("shutdown complete")
}
