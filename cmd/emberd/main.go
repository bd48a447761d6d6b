package main

import (
	"flag"
	"net/http"
	"os"

	"ashforge/config"
	"ashforge/core/events"
	"ashforge/core/state"
	"ashforge/gateway"
	"ashforge/merkleproof"
	"ashforge/native/claims"
	"ashforge/native/common"
	"ashforge/native/ember"
	"ashforge/observability"
	"ashforge/observability/logging"
	"ashforge/storage"
	"ashforge/vault"
)

func main() {
	configPath := flag.String("config", "./emberd.toml", "path to the emberd configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Setup("emberd", "").Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup("emberd", cfg.Env)

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	manager := state.NewManager(db)
	emitter := events.MultiEmitter{
		events.SlogEmitter{Logger: logger},
		observability.EventEmitter{},
	}

	admin, err := config.ParseAddress(cfg.Admin)
	if err != nil {
		logger.Error("invalid admin address", "error", err)
		os.Exit(1)
	}
	auth := common.NewAuthority(manager)
	auth.SetEmitter(emitter)
	if err := auth.Bootstrap(admin); err != nil {
		logger.Error("failed to bootstrap authority", "error", err)
		os.Exit(1)
	}
	pauser := common.NewPauser(manager, auth)
	pauser.SetEmitter(emitter)

	vaultClient := vault.NewClient(cfg.VaultURL)
	verifier := merkleproof.SHA3Verifier{}

	mintSupply, _ := config.ParseAmount(cfg.Claims.MintSupply)
	bitPayout, _ := config.ParseAmount(cfg.Claims.BitPayout)
	claimEngine := claims.NewEngine(manager, auth, verifier, vaultClient, claims.Config{
		MintSupply: mintSupply,
		BitPayout:  bitPayout,
	})
	claimEngine.SetEmitter(emitter)
	claimEngine.SetPauses(manager)
	claimEngine.SetStaker(vaultClient)

	quantityMultiplier, _ := config.ParseAmount(cfg.Ember.QuantityMultiplier)
	credentialID, _ := config.ParseAmount(cfg.Ember.CredentialID)
	emberCfg := ember.Config{
		NumeratorPrecision: cfg.Ember.NumeratorPrecision,
		QuantityMultiplier: quantityMultiplier,
		CredentialID:       credentialID,
		InitialTime:        cfg.Ember.InitialTime,
		CycleDuration:      cfg.Ember.CycleDuration,
		MaxCycle:           cfg.Ember.MaxCycle,
	}
	if cfg.Ember.CredentialToken != "" {
		emberCfg.CredentialToken, _ = config.ParseAddress(cfg.Ember.CredentialToken)
	}
	if cfg.Ember.AshSource != "" {
		emberCfg.AshSource, _ = config.ParseAddress(cfg.Ember.AshSource)
	}
	emberEngine := ember.NewEngine(manager, auth, verifier, vaultClient, emberCfg)
	emberEngine.SetEmitter(emitter)
	emberEngine.SetPauses(manager)

	server := gateway.New(logger, claimEngine, emberEngine, auth, pauser)
	logger.Info("emberd listening", "address", cfg.ListenAddress)
	if err := http.ListenAndServe(cfg.ListenAddress, server.Router()); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
