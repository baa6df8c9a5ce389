package main

import (
	"log"
	"os"

	"github.com/himanshhhhuv/studentinfo/core"
	"github.com/himanshhhhuv/studentinfo/storage/mongodb"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	db, err := mongodb.Open(conf)
	errAndDie(err)
	defer func() { _ = mongodb.Close(db) }()

	// start CLI
	cli := commandLine{
		db:      db,
		usrRepo: mongodb.NewUserRepository(db),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
