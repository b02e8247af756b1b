// Merkle Digest Service: builds Merkle trees over submitted items,
// stores the resulting records and verifies them by recomputation.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/joseferreira/Merkle-Digest-Service/internal/api"
	"github.com/joseferreira/Merkle-Digest-Service/internal/infra"
	"github.com/joseferreira/Merkle-Digest-Service/internal/persistence"
	"github.com/joseferreira/Merkle-Digest-Service/internal/service"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	config := infra.LoadConfig()

	repo, err := persistence.NewTreeRepository(config.DBPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open tree repository")
	}
	defer repo.Close()

	digests, err := service.NewDigestService(repo, config.HashAlgorithm, config.HashWorkers)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize digest service")
	}

	go func() {
		apiServer := api.NewServer(config.HTTPListenAddress, digests)
		if err := apiServer.Start(); err != nil {
			logrus.WithError(err).Fatal("Failed to start API server")
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logrus.Info("Shutting down...")
}
