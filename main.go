package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"twtr/crud"
	"twtr/http"
)

// main is the app's entry point.
func main() {
	// Check if the flag "-prod" has been provided. It means that we're
	// running in production.
	productionBool := flag.Bool("prod", false, "Provide this flag in production to ensure that a .config.json file is provided before the application starts.")
	flag.Parse()

	// Load configuration from a .config.json file if present, otherwise use
	// the default dev setup. If *productionBool evaluates to true the
	// .config.json file is required and the app will panic without one.
	config := LoadConfig(*productionBool)

	// Structured logging: json in production, readable text in development.
	logrus.SetOutput(os.Stdout)
	if config.IsProd() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetLevel(logrus.DebugLevel)
	}

	// Open a database connection and execute migrations.
	db := NewDB(config.Database.ConnectionInfo())
	err := Open(db, config.IsProd())
	must(err)
	defer Close(db)
	err = AutoMigrate(db)
	must(err)

	// Start the crud services.
	services, err := crud.NewServices(
		db.Gorm,
		crud.WithUser(config.Pepper, config.HMACKey),
		crud.WithTweet(),
		crud.WithFriendship(),
		crud.WithLike(),
	)
	must(err)

	// Set up a webserver and serve the app.
	server := http.NewServer(config.IsProd(), config.CSRFKey, config.CORS.AllowedOrigins, services)
	err = server.Run(config.Port, config.Server.ReadTimeout, config.Server.WriteTimeout)
	must(err)
}

// must is a little helper for shortening the panic instruction.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
