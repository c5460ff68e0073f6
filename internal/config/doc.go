// Package config assembles the mailroom process configuration.
//
// Settings come from the environment, optionally seeded from a .env file
// with godotenv, and are parsed by caarlos0/env into the Config structs that
// live next to each package. MAILER_PROVIDER picks the Sender:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	sender, err := cfg.NewSender()
package config
