// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

// Command coffeeshop-migrate creates, resets and seeds the drink table.
//
// Without flags it only creates the table if it does not exist. -reset drops
// all drinks, -seed inserts the sample drink "water".
package main

import (
	"context"
	"flag"

	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/coffeeshop/core/config"
	"github.com/relabs-tech/coffeeshop/core/drink"
	"github.com/relabs-tech/coffeeshop/core/logger"
)

func main() {
	reset := flag.Bool("reset", false, "drop and recreate the drink table")
	seed := flag.Bool("seed", false, "insert the sample drink")
	configPath := flag.String("config-path", "", "optional TOML file with environment settings")
	flag.Parse()

	if err := config.ApplyFile(*configPath); err != nil {
		logrus.Fatalln(err)
	}
	service, err := config.LoadDatabase()
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

	ctx := context.Background()
	store := drink.NewStore(db)
	if *reset {
		err = store.Reset(ctx)
	} else {
		err = store.CreateTable(ctx)
	}
	if err != nil {
		rlog.WithError(err).Fatalln("cannot prepare drink table")
	}

	if *seed {
		d, err := store.Seed(ctx)
		if err != nil {
			rlog.WithError(err).Fatalln("cannot seed")
		}
		rlog.Infoln("seeded drink", d.ID, d.Title)
	}
	rlog.Infoln("done")
}
