package main

import (
	"context"
	"crypto/sha256"
	"flag"
	"log"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"nhbchain/crypto"
	"nhbchain/native/activepool"
	nativecommon "nhbchain/native/common"
	"nhbchain/native/collsurpluspool"
	"nhbchain/native/communityissuance"
	"nhbchain/native/defaultpool"
	"nhbchain/native/furfi"
	"nhbchain/native/furusd"
	"nhbchain/native/loan"
	"nhbchain/native/stabilitypool"
	"nhbchain/native/troves"
	"nhbchain/native/vesting"
	"nhbchain/observability/logging"
	telemetry "nhbchain/observability/otel"
	modules "nhbchain/rpc/modules"
	"nhbchain/services/stabilitypoold/config"
	"nhbchain/storage/boltstore"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "services/stabilitypoold/config.yaml", "path to stabilitypoold config")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("NHB_ENV"))
	logger := logging.Setup("stabilitypoold", env)

	otlpEndpoint := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	otlpHeaders := telemetry.ParseHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	insecure := true
	if value := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE")); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			insecure = parsed
		}
	}
	shutdownTelemetry, err := telemetry.Init(context.Background(), telemetry.Config{
		ServiceName: "stabilitypoold",
		Environment: env,
		Endpoint:    otlpEndpoint,
		Insecure:    insecure,
		Headers:     otlpHeaders,
		Metrics:     true,
		Traces:      true,
	})
	if err != nil {
		log.Fatalf("init telemetry: %v", err)
	}
	defer func() {
		if shutdownTelemetry != nil {
			_ = shutdownTelemetry(context.Background())
		}
	}()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		log.Fatalf("create data dir: %v", err)
	}
	dbPath := cfg.DataDir + string(os.PathSeparator) + "stabilitypool.db"
	store, err := boltstore.Open(dbPath, boltstore.AllBuckets()...)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	loanSupplyCap, ok := new(big.Int).SetString(cfg.Issuance.LOANSupplyCap, 10)
	if !ok {
		log.Fatalf("invalid issuance.loan_supply_cap: %q", cfg.Issuance.LOANSupplyCap)
	}
	furfiPrice, ok := new(big.Int).SetString(cfg.Pricing.FURFIPriceFURUSD, 10)
	if !ok {
		log.Fatalf("invalid pricing.furfi_price_furusd: %q", cfg.Pricing.FURFIPriceFURUSD)
	}

	poolAddr := deriveModuleAddress("stabilitypool")
	troveManagerAddr := deriveModuleAddress("trovemanager")
	activePoolAddr := deriveModuleAddress("activepool")
	defaultPoolAddr := deriveModuleAddress("defaultpool")
	collSurplusAddr := deriveModuleAddress("collsurpluspool")
	issuanceAddr := deriveModuleAddress("communityissuance")
	vestingAddr := deriveModuleAddress("vesting")

	furusdEngine := furusd.NewEngine()
	furusdEngine.SetState(boltstore.NewFURUSDStore(store))
	furusdEngine.SetMinters(troveManagerAddr)
	furusdEngine.SetBurners(troveManagerAddr)

	furfiEngine := furfi.NewEngine()
	furfiEngine.SetState(boltstore.NewFURFIStore(store))
	furfiEngine.SetMinters(troveManagerAddr)

	loanEngine := loan.NewEngine(loanSupplyCap, cfg.Issuance.DeploymentUnixSeconds)
	loanEngine.SetState(boltstore.NewLOANStore(store))
	loanEngine.SetClock(loan.SystemClock{})
	loanEngine.SetMinters(issuanceAddr)
	loanEngine.SetRestrictedSenders(issuanceAddr)
	loanEngine.SetAlwaysAllowedRecipients(poolAddr)

	vestingEngine := vesting.NewEngine(vestingAddr)
	vestingEngine.SetState(boltstore.NewVestingStore(store))
	vestingEngine.SetLOANLedger(loanEngine)
	vestingEngine.SetClock(vesting.SystemClock{})
	loanEngine.SetLockRegistry(vestingEngine)

	issuanceEngine := communityissuance.NewEngine(issuanceAddr, loanSupplyCap)
	issuanceEngine.SetState(boltstore.NewCommunityIssuanceStore(store))
	issuanceEngine.SetLOANLedger(loanEngine)
	issuanceEngine.SetClock(communityissuance.SystemClock{})

	activePoolEngine := activepool.NewEngine(activePoolAddr)
	activePoolEngine.SetState(boltstore.NewActivePoolStore(store))
	activePoolEngine.SetCollateral(furfiEngine)
	activePoolEngine.SetAuthorizedCallers(troveManagerAddr)

	defaultPoolEngine := defaultpool.NewEngine(defaultPoolAddr)
	defaultPoolEngine.SetState(boltstore.NewDefaultPoolStore(store))
	defaultPoolEngine.SetCollateral(furfiEngine)
	defaultPoolEngine.SetAuthorizedCallers(troveManagerAddr)

	collSurplusEngine := collsurpluspool.NewEngine(collSurplusAddr)
	collSurplusEngine.SetState(boltstore.NewCollSurplusPoolStore(store))
	collSurplusEngine.SetCollateral(furfiEngine)
	collSurplusEngine.SetAuthorizedCallers(troveManagerAddr)

	poolEngine := stabilitypool.NewEngine(poolAddr, troveManagerAddr)
	poolEngine.SetState(boltstore.NewStabilityPoolStore(store))
	poolEngine.SetStablecoin(furusdEngine)
	poolEngine.SetActivePool(activePoolEngine)
	poolEngine.SetCommunityIssuance(issuanceEngine)

	trovesEngine := troves.NewEngine(troveManagerAddr, activePoolAddr)
	trovesEngine.SetState(boltstore.NewTrovesStore(store))
	trovesEngine.SetPriceOracle(fixedPriceOracle{price: furfiPrice})
	trovesEngine.SetStablecoin(furusdEngine)
	trovesEngine.SetCollateral(furfiEngine)
	trovesEngine.SetActivePool(activePoolEngine)
	trovesEngine.SetStabilityPool(poolEngine, poolAddr)
	trovesEngine.SetCollSurplusPool(collSurplusEngine, collSurplusAddr)
	trovesEngine.SetMinCollateralRatio(troves.DefaultMCR)

	poolEngine.SetBorrowerOperations(trovesEngine)
	poolEngine.SetTroveStatusOracle(trovesEngine)

	quota := nativecommon.Quota{
		MaxRequestsPerMin: cfg.RateLimit.MaxRequestsPerMin,
		EpochSeconds:      cfg.RateLimit.EpochSeconds,
	}
	router := modules.NewStabilityPoolModule(poolEngine, cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AdminSubs, quota, logger).Routes()

	server := &http.Server{Addr: cfg.ListenAddress, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("stabilitypoold listening", slog.String("addr", cfg.ListenAddress))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("forced server stop", slog.String("error", err.Error()))
		}
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve http: %v", err)
		}
	}
}

// deriveModuleAddress derives a stable 20-byte address for a module's own
// account from a human-readable label, mirroring the Vesting engine's
// lock-address derivation scheme.
func deriveModuleAddress(label string) crypto.Address {
	sum := sha256.Sum256([]byte("stabilitypoold/" + label))
	return crypto.NewAddress(crypto.FurPrefix, sum[:20])
}

// fixedPriceOracle is the placeholder FURFI/FURUSD price source wired into
// the Trove engine; real oracle integration is out of scope.
type fixedPriceOracle struct {
	price *big.Int
}

func (o fixedPriceOracle) GetPrice() (*big.Int, error) {
	return new(big.Int).Set(o.price), nil
}
