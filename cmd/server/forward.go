package main

import (
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"model-serving-adapters/internal/adapters/primary/http/handlers"
	"model-serving-adapters/internal/adapters/secondary/endpoint"
	ports "model-serving-adapters/internal/core/ports/output"
	"model-serving-adapters/internal/core/services"
)

func newForwardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forward",
		Short: "Relay requests to the configured remote inference endpoint",
		Args:  cobra.ExactArgs(0),
		RunE:  runForward,
	}
	cmd.Flags().Int("port", 8080, "Listen port (env SERVER_PORT)")
	return cmd
}

func runForward(cmd *cobra.Command, _ []string) error {
	cfg, closer, err := setup(cmd.Flags())
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Endpoint Client (requests fail with the generic error until configured)
	var endpointClient ports.EndpointClient
	client, err := endpoint.NewClient(&cfg.Endpoint)
	if err != nil {
		log.Warnf("endpoint client init failed (every forward will fail): %v", err)
	} else {
		endpointClient = client
		log.WithFields(log.Fields{
			"url":  cfg.Endpoint.URL,
			"name": cfg.Endpoint.Name,
		}).Info("endpoint client initialized")
	}

	mode := "validated"
	if cfg.Forwarder.RequiredField == "" {
		mode = "bare"
	}
	log.WithFields(log.Fields{
		"mode":           mode,
		"required_field": cfg.Forwarder.RequiredField,
	}).Info("forwarder configured")

	forwarderSvc := services.NewForwarderService(endpointClient, services.ForwarderOptions{
		RequiredField: cfg.Forwarder.RequiredField,
		TextPrefix:    cfg.Forwarder.TextPrefix,
	})
	h := handlers.New(nil, forwarderSvc)

	g, gctx := errgroup.WithContext(ctx)
	serveHTTP(gctx, g, cfg.Server, newRouter(h))
	return g.Wait()
}
