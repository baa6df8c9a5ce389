package main

import (
	"context"
	"time"

	"github.com/himanshhhhuv/studentinfo/storage/mongodb"
)

var ensureIndexesFunc = mongodb.EnsureIndexes // mockable

func (cli *commandLine) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return ensureIndexesFunc(ctx, cli.db)
}
