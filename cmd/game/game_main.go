package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"BatallaMedieval/internal/shared/config"
	"BatallaMedieval/internal/shared/gameconfig/balance"
	"BatallaMedieval/internal/shared/infrastructure/db"
	"BatallaMedieval/internal/shared/infrastructure/mongo"
	"BatallaMedieval/internal/shared/logs"
	transporthttp "BatallaMedieval/internal/shared/transport/http"
	"BatallaMedieval/internal/sim/infra/anticheat"
	"BatallaMedieval/internal/sim/infra/persistence/memory"
	"BatallaMedieval/internal/sim/infra/persistence/mongodb"
	"BatallaMedieval/internal/sim/infra/persistence/sqldb"
	"BatallaMedieval/internal/sim/interfaces"
	"BatallaMedieval/internal/sim/interfaces/handler"
	"BatallaMedieval/internal/sim/interfaces/handler/ws"
	"BatallaMedieval/internal/sim/service"
	"BatallaMedieval/internal/sim/service/port"
)

func main() {
	config.Load("")
	if err := logs.Init("game", config.Conf.Log); err != nil {
		panic(err)
	}
	logs.Info("conf", zap.Any("conf", config.Conf))

	// 平衡表：路径为空时使用内置默认表
	balanceCfg, err := balance.Load(config.Conf.Game.BalanceData)
	if err != nil {
		logs.Fatal("load balance data failed", zap.Error(err))
	}

	gormDB, err := db.Open(config.Conf.DB)
	if err != nil {
		logs.Fatal("open db failed", zap.Error(err))
	}
	if err := sqldb.AutoMigrate(gormDB); err != nil {
		logs.Fatal("auto migrate failed", zap.Error(err))
	}

	cities := sqldb.NewCityRepo(gormDB)
	worlds := sqldb.NewWorldRepo(gormDB)
	oases := sqldb.NewOasisRepo(gormDB)
	movementRepo := sqldb.NewMovementRepo(gormDB)

	// 战报进 Mongo；连不上就退回内存存储，不让文档库拖垮整个世界
	var reports port.ReportRepository
	mongoClient, err := mongo.Open(config.Conf.Mongo, logs.Logger())
	if err != nil {
		logs.Warn("mongodb 不可用，战报退回内存存储", zap.Error(err))
		reports = memory.NewReportStore()
	} else {
		defer func() {
			_ = mongoClient.Disconnect(context.Background())
		}()
		reports = mongodb.NewReportRepo(mongoClient.Database(config.Conf.Mongo.DBName))
	}

	hub := ws.NewHub()
	dice := service.NewDice()
	guard := anticheat.NewActionLimiter(30, 10)

	modifiers := service.NewModifierService(worlds)
	production := service.NewProductionService(balanceCfg, cities, oases, modifiers, hub)
	queues := service.NewQueueService(balanceCfg, cities, production, modifiers,
		port.FixedSlots{Build: 2, Train: 2}, hub, hub)
	combat := service.NewCombatService(balanceCfg)
	espionage := service.NewEspionageService(balanceCfg)
	movements := service.NewMovementService(balanceCfg, cities, oases, movementRepo, reports,
		production, modifiers, combat, espionage, hub, hub, guard, dice)
	worldGen := service.NewWorldGenService(balanceCfg, worlds, cities, oases, dice)
	tick := service.NewTickService(queues, movements)
	barbarian := service.NewBarbarianService(balanceCfg, cities, dice)

	runner := service.NewRunner(tick, barbarian,
		time.Duration(config.Conf.Game.TickSeconds)*time.Second,
		time.Duration(config.Conf.Game.BarbarianMinutes)*time.Minute)

	sim := handler.NewSim(production, queues, movements, worldGen, tick, cities)
	simModule := interfaces.New(sim, hub)

	host := config.Conf.HTTPServer.Host
	if host == "" {
		host = "0.0.0.0"
	}
	addr := fmt.Sprintf("%s:%d", host, config.Conf.HTTPServer.Port)

	httpServer := transporthttp.NewHttpServer(addr, nil)
	httpModules := []transporthttp.Registrar{
		simModule,
	}
	for _, m := range httpModules {
		m.HttpRegister(httpServer.Group())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go runner.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		logs.Info("game server started", zap.String("addr", addr))
		if err := httpServer.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- fmt.Errorf("game server start failed: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		logs.Info("收到退出信号，准备优雅退出")
	case err := <-errCh:
		if err != nil {
			logs.Error("服务异常退出", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
}
