package main

import (
	"os"

	"github.com/sirupsen/logrus"

	// Load plugins
	_ "github.com/weaselp/ticketbot/plugins/tickets"

	// Load DB drivers we care about. We only officially support postgres and
	// sqlite but this should work with any db driver supported by xorm.
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	// Load the core
	"github.com/weaselp/ticketbot"
)

func failIfErr(err error, desc string) {
	if err != nil {
		logrus.WithError(err).Fatalln(desc)
	}
}

func main() {
	conf := os.Getenv("TICKETBOT_CONFIG")
	if conf == "" {
		conf = "config.toml"
		_, err := os.Stat(conf)
		failIfErr(err, "Failed to load config")
	}

	confReader, err := os.Open(conf)
	failIfErr(err, "Failed to load config")

	// Create the bot
	b, err := ticketbot.NewBot(confReader)
	failIfErr(err, "Failed to create new bot")

	// Run the bot
	err = b.ConnectAndRun()
	failIfErr(err, "Failed to run bot")
}
