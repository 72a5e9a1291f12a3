package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rocketscienceinc/tictactoe-client/internal/config"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/repository"
	"github.com/rocketscienceinc/tictactoe-client/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-client/internal/session"
	"github.com/rocketscienceinc/tictactoe-client/internal/transport/socket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the client application: it connects the event channel,
// seeds a match session and reconciles server events until shutdown.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	snapshotRepo := repository.NewSnapshotRepository(redisStorage)
	resultsRepo := repository.NewResultsRepository(redisStorage)

	client := socket.New(logger, conf.ServerURL)

	userID := conf.UserID
	if userID == "" {
		userID = uuid.NewString()
		log.Info("no user id configured, generated one", "userID", userID)
	}

	roomID := conf.Match.RoomID
	if roomID == "" {
		roomID = entity.GenerateRoomID()
		log.Info("no room id configured, generated one", "roomID", roomID)
	}

	var timerDuration *int
	if conf.Match.TimerDuration > 0 {
		duration := conf.Match.TimerDuration
		timerDuration = &duration
	}

	matchSession := session.New(logger, client, snapshotRepo, resultsRepo, clockwork.NewRealClock(), session.Params{
		RoomID:        roomID,
		UserID:        userID,
		BoardSize:     conf.Match.BoardSize,
		LineLength:    conf.Match.LineLength,
		TotalRounds:   conf.Match.Rounds,
		TimerDuration: timerDuration,
		OnMatchEnd: func() {
			log.Info("match finished")
		},
		OnFatal: func() {
			log.Error("session hit a fatal error, shutting down")
			cancel()
		},
	})

	if err = matchSession.Start(ctx); err != nil {
		return fmt.Errorf("could not start session: %w", err)
	}
	defer matchSession.Close()

	socketErrCh := make(chan error, 1)
	go func() {
		log.Info("Connecting to game server", "url", conf.ServerURL)
		if sockErr := client.Run(ctx); sockErr != nil && !errors.Is(sockErr, context.Canceled) {
			log.Error("socket client error", "error", sockErr)
			socketErrCh <- sockErr
		}
	}()

	select {
	case err = <-socketErrCh:
		return fmt.Errorf("socket client error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
