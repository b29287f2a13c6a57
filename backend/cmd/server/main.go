// Copyright (C) 2025 efchat.net <tj@efchat.net>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"

	"github.com/efchatnet/winkdrops/backend/advisor"
	"github.com/efchatnet/winkdrops/backend/config"
	"github.com/efchatnet/winkdrops/backend/integration"
	"github.com/efchatnet/winkdrops/backend/middleware"
)

const limiterCleanupInterval = 5 * time.Minute

var rootCmd = &cobra.Command{
	Use:          "winkdrops-server",
	Short:        "Runs the WinkDrops API server",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		initLog(cfg.LogLevel)
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	config.LoadDotEnv()
	config.SetDefaults(viper.GetViper())

	flags := rootCmd.Flags()
	flags.String("port", "8081", "HTTP listen port")
	flags.String("database-url", "", "Postgres connection string")
	flags.String("redis-url", "", "Redis address")
	flags.String("jwt-issuer", "", "Expected JWT issuer")
	flags.String("gemini-model", "", "Gemini model used for AI features")
	flags.UintP("log-level", "v", 0, "Verbosity: 0 info, 1 debug, 2 trace")

	bind := map[string]string{
		config.KeyPort:        "port",
		config.KeyDatabaseURL: "database-url",
		config.KeyRedisURL:    "redis-url",
		config.KeyJWTIssuer:   "jwt-issuer",
		config.KeyGeminiModel: "gemini-model",
		config.KeyLogLevel:    "log-level",
	}
	for key, flag := range bind {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			jww.FATAL.Panicf("failed to bind flag %s: %v", flag, err)
		}
	}
}

func initLog(threshold uint) {
	switch {
	case threshold > 1:
		jww.SetStdoutThreshold(jww.LevelTrace)
		jww.SetFlags(log.LstdFlags | log.Lmicroseconds)
	case threshold == 1:
		jww.SetStdoutThreshold(jww.LevelDebug)
		jww.SetFlags(log.LstdFlags | log.Lmicroseconds)
	default:
		jww.SetStdoutThreshold(jww.LevelInfo)
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	// Database connection
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})
	defer rdb.Close()

	// AI features are optional
	var ai integration.Advisor
	svc, err := advisor.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		jww.WARN.Printf("[Server] AI features disabled: %v", err)
	} else {
		ai = svc
	}

	app, err := integration.New(ctx, &integration.Config{
		DB:        db,
		Redis:     rdb,
		JWTSecret: cfg.JWTSecret,
		JWTIssuer: cfg.JWTIssuer,
		JWTTTL:    cfg.JWTTTL,
		Advisor:   ai,
		AIRate:    cfg.AIRate,
		AIBurst:   cfg.AIBurst,
	})
	if err != nil {
		return err
	}

	stop := make(chan struct{})
	defer close(stop)
	app.StartCleanup(limiterCleanupInterval, stop)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.NewCORS(cfg.AllowedOrigins))
	app.RegisterRoutes(r, nil)

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Health check (no auth required)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := app.ValidateSetup(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(err.Error()))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		jww.INFO.Printf("[Server] WinkDrops server starting on port %s", cfg.Port)
		jww.INFO.Printf("[Server] JWT Issuer: %s", cfg.JWTIssuer)
		errs <- srv.ListenAndServe()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errs:
		return err
	case sig := <-sigs:
		jww.INFO.Printf("[Server] received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		jww.ERROR.Println(err)
		os.Exit(1)
	}
}
