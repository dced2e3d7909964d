package app

import (
	"log/slog"
	"os"
	"time"

	"github.com/ashchv/grubswipe/internal/config"
	http_init "github.com/ashchv/grubswipe/internal/delivery/http/init"
	http_room "github.com/ashchv/grubswipe/internal/delivery/http/room"
	ws_session "github.com/ashchv/grubswipe/internal/delivery/ws/session"
	"github.com/ashchv/grubswipe/internal/infra/matchlogmock"
	infra_places "github.com/ashchv/grubswipe/internal/infra/places"
	infra_pg_init "github.com/ashchv/grubswipe/internal/infra/postgres/init"
	infra_postgres_matchlog "github.com/ashchv/grubswipe/internal/infra/postgres/matchlog"
	infra_redis_codeset "github.com/ashchv/grubswipe/internal/infra/redis/codeset"
	infra_redis_init "github.com/ashchv/grubswipe/internal/infra/redis/init"
	infra_places_cache "github.com/ashchv/grubswipe/internal/infra/redis/placescache"
	"github.com/ashchv/grubswipe/internal/registry"
	usecase_catalog "github.com/ashchv/grubswipe/internal/usecase/catalog"
	usecase_room "github.com/ashchv/grubswipe/internal/usecase/room"
	usecase_vote "github.com/ashchv/grubswipe/internal/usecase/vote"
)

const placesCacheTTL = 15 * time.Minute

func Go(cfg *config.Config) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)
	codeSet := infra_redis_codeset.New(redisConn, "room_codes")
	placesCache := infra_places_cache.New(redisConn, "places", placesCacheTTL)

	placesClient := infra_places.MustEstablishConn(cfg.Places)
	catalogUC := usecase_catalog.New(placesClient, placesCache)

	var matchLog usecase_vote.MatchLog
	if cfg.Postgres.Host == "" {
		matchLog = matchlogmock.New()
	} else {
		pgConn := infra_pg_init.MustEstablishConn(cfg.Postgres)
		matchLog = infra_postgres_matchlog.New(pgConn)
	}

	reg := registry.New(codeSet)
	roomUC := usecase_room.New(reg, catalogUC)
	voteUC := usecase_vote.New(reg, matchLog)

	hub := ws_session.NewHub(logger)
	roomUC.AttachConns(hub)

	controllerPool := http_init.NewControllerPool()
	controllerPool.Add(http_room.New(roomUC, voteUC))
	controllerPool.Add(ws_session.NewController(hub, roomUC, voteUC))

	controllerPool.Register()
	controllerPool.RunAll(cfg.HTTP.Port)
}
