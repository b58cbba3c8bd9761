package main

import (
	"database/sql"
	"log"
	"os"

	dig_container "github.com/Hexmon/e-dossier-sub006/apps/di/dig"
	"github.com/Hexmon/e-dossier-sub006/core"
	"github.com/Hexmon/e-dossier-sub006/core/performance"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	container := dig_container.New()
	err := container.Invoke(func(conf *core.Config, db *sql.DB, perfSvc *performance.Service) {
		defer db.Close()

		cli := commandLine{
			db:      db,
			driver:  conf.Database.Engine,
			perfSvc: perfSvc,
			out:     os.Stdout,
		}
		if err := cli.run(os.Args); err != nil {
			if err != errHelp {
				logger.Printf("\nerror: %s\n", describeError(err))
			}
			_ = db.Close()
			os.Exit(1)
		}
	})
	errAndDie(err)
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
