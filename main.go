package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-push-server/internal/config"
	"recipe-push-server/internal/database"
	"recipe-push-server/internal/eventpublisher/event"
	"recipe-push-server/internal/fanout"
	"recipe-push-server/internal/health"
	"recipe-push-server/internal/model"
	"recipe-push-server/internal/push"
	invitationRepository "recipe-push-server/internal/repository/invitation"
	menuRepository "recipe-push-server/internal/repository/menu"
	preferenceRepository "recipe-push-server/internal/repository/preference"
	recipeRepository "recipe-push-server/internal/repository/recipe"
	recipeCollectionRepository "recipe-push-server/internal/repository/recipecollection"
	shoplistRepository "recipe-push-server/internal/repository/shoplist"
	tokenRepository "recipe-push-server/internal/repository/token"
	"recipe-push-server/internal/supervisor"
	"recipe-push-server/internal/watcher"

	firebase "firebase.google.com/go/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"
)

func main() {

	cnf, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogger(cnf.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	defer signal.Stop(sigs)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(cnf.Firebase.Credentials()))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create firebase app")
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create firestore client")
	}
	defer fsClient.Close()
	firestoreClient := database.New(fsClient, cnf.WriteTimeoutSecond)

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create messaging client")
	}

	invitationRepo := invitationRepository.New(&firestoreClient)
	menuRepo := menuRepository.New(&firestoreClient)
	recipeCollectionRepo := recipeCollectionRepository.New(&firestoreClient)
	recipeRepo := recipeRepository.New(&firestoreClient)
	shoplistRepo := shoplistRepository.New(&firestoreClient)
	tokenRepo := tokenRepository.New(&firestoreClient)
	preferenceRepo := preferenceRepository.New(&firestoreClient)

	orchestrator := fanout.New(preferenceRepo, tokenRepo, invitationRepo, push.New(messagingClient), cnf.DispatchConcurrency)

	sup := supervisor.New(cnf.RetryDelay,
		watcher.New[model.Invitation]("invitations", invitationRepo, watcher.NewInvitationHandler(), orchestrator),
		watcher.New[model.Menu]("menulists", menuRepo, watcher.NewMenuHandler(recipeRepo), orchestrator),
		watcher.New[model.RecipeCollection]("recipeCollections", recipeCollectionRepo, watcher.NewRecipeCollectionHandler(recipeRepo), orchestrator),
		watcher.New[model.ShoplistItem]("items", event.SourceFunc[model.ShoplistItem](shoplistRepo.ListenItems), watcher.NewShoplistItemHandler(shoplistRepo), orchestrator),
	)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return sup.Run(gctx)
	})
	group.Go(func() error {
		return health.Serve(gctx, net.JoinHostPort("", cnf.Port), health.NewRouter())
	})

	select {
	case <-sigs:
		// Received a termination signal, continue to shutdown
	case <-gctx.Done():
		// errgroup encountered an error, continue to shutdown
	}

	cancel() // cancel the root context to signal all the watchers

	done := make(chan error, 1)
	go func() { done <- group.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			log.Error().Err(err).Msg("shutdown with error")
			os.Exit(1)
		}
	case <-time.After(time.Second * 5):
		// Give enough time to close all the pending resources
		log.Error().Msg("timed out waiting for shutdown")
		os.Exit(1)
	case <-sigs:
		// Forcefully terminate the app with a signal
		os.Exit(1)
	}
}

func setupLogger(cnf config.Log) {
	level, err := zerolog.ParseLevel(cnf.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cnf.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
