package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/beiwe-client/internal/client/cli"
	"github.com/dmitrijs2005/beiwe-client/internal/client/client"
	"github.com/dmitrijs2005/beiwe-client/internal/client/config"
	"github.com/dmitrijs2005/beiwe-client/internal/client/filequeue"
	"github.com/dmitrijs2005/beiwe-client/internal/client/identity"
	"github.com/dmitrijs2005/beiwe-client/internal/client/services"
	"github.com/dmitrijs2005/beiwe-client/internal/client/store"
	"github.com/dmitrijs2005/beiwe-client/internal/client/urls"
	"github.com/dmitrijs2005/beiwe-client/internal/filex"
	"github.com/dmitrijs2005/beiwe-client/internal/logging"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, cfg.LogLevel)

	if _, err := filex.EnsureDir(cfg.DataDir); err != nil {
		log.Fatalf("data dir: %v", err)
	}

	st, err := store.Open(ctx, cfg.DatabaseFile())
	if err != nil {
		log.Fatalf("error initializing database: %v", err)
	}
	defer st.Close()

	if cfg.ServerURL != "" {
		if current, err := st.ServerURL(ctx); err == nil && current == "" {
			if err := st.SetServerURL(ctx, cfg.ServerURL); err != nil {
				log.Fatalf("store server url: %v", err)
			}
		}
	}

	hasher, err := st.Hasher(ctx)
	if err != nil {
		log.Fatalf("hash parameters: %v", err)
	}
	device := identity.FromHost(hasher, cfg.VersionString())

	queue, err := filequeue.New(cfg.UploadDir())
	if err != nil {
		log.Fatalf("upload queue: %v", err)
	}

	factory := client.NewFactory(client.Options{
		ConnectTimeout: cfg.ConnectTimeout,
		ReadTimeout:    cfg.ReadTimeout,
	}, logger)
	codec := client.NewCodec(identity.NewProvider(device, st))
	resolver := urls.NewResolver(st, cfg.CustomizableServerURL, cfg.Channel())

	app := cli.NewApp(cli.Deps{
		Registrar: services.NewRegistrationService(factory, codec, device, resolver, st, logger),
		Uploader:  services.NewUploadService(factory, codec, resolver, queue, st, logger, services.WithUploadCeiling(cfg.UploadCeiling)),
		Notifier:  services.NewNotificationService(factory, codec, resolver, st, logger),
		Messages:  services.NewMessageService(st.Messages),
		Store:     st,
		Queue:     queue,
		Logger:    logger,
	}, cli.Options{
		CustomizableServerURL: cfg.CustomizableServerURL,
		DefaultServerURL:      cfg.Channel().DefaultURL(),
		UploadInterval:        cfg.UploadInterval,
	})

	app.Run(ctx)

}
