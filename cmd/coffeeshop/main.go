// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

// Command coffeeshop serves the coffee shop REST API
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/coffeeshop/core"
	"github.com/relabs-tech/coffeeshop/core/access"
	"github.com/relabs-tech/coffeeshop/core/backend"
	"github.com/relabs-tech/coffeeshop/core/config"
	"github.com/relabs-tech/coffeeshop/core/logger"
	"github.com/relabs-tech/coffeeshop/core/notifier"
	"github.com/relabs-tech/coffeeshop/core/registry"
)

func main() {
	configPath := flag.String("config-path", "", "optional TOML file with environment settings")
	flag.Parse()

	if err := config.ApplyFile(*configPath); err != nil {
		logrus.Fatalln(err)
	}
	service, err := config.Load()
	if err != nil {
		logrus.Fatalln("cannot load configuration:", err)
	}
	logger.InitLogger(service.Level())
	rlog := logger.Default()

	db, err := service.OpenDB()
	if err != nil {
		rlog.WithError(err).Fatalln("cannot open database")
	}
	defer db.Close()

	reg, err := registry.New(db)
	if err != nil {
		rlog.WithError(err).Fatalln("cannot create registry")
	}

	keys := access.NewKeySet(&access.KeySetBuilder{
		URL:             service.KeySetURL(),
		Registry:        &reg,
		RefreshInterval: service.JWKSRefresh,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := keys.Load(ctx); err != nil {
		// keys are fetched again on the first request
		rlog.WithError(err).Warnln("cannot load key set from", service.KeySetURL())
	}
	cancel()

	var drinkNotifier core.Notifier
	if brokers := service.Brokers(); len(brokers) > 0 {
		kafkaNotifier := notifier.New(brokers, service.KafkaTopic)
		defer kafkaNotifier.Close()
		drinkNotifier = kafkaNotifier
		rlog.Infoln("publishing drink changes to", service.KafkaTopic)
	}

	router := mux.NewRouter()
	backend.New(&backend.Builder{
		DB:       db,
		Router:   router,
		Verifier: access.NewVerifier(keys, service.Issuer(), service.APIAudience),
		Notifier: drinkNotifier,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(service.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		rlog.Infoln("listen on port", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rlog.WithError(err).Fatalln("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	rlog.Infoln("shutting down")
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		rlog.WithError(err).Errorln("shutdown failed")
	}
}
