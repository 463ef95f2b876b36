package modules

import (
	"encoding/json"
	"log/slog"
	"math/big"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"nhbchain/crypto"
	nativecommon "nhbchain/native/common"
	"nhbchain/native/stabilitypool"
	"nhbchain/observability"
	"nhbchain/observability/logging"
	"nhbchain/observability/metrics"
)

const stabilityPoolModuleName = "stabilitypool"

var errBadAmount = badAmountError{}

type badAmountError struct{}

func (badAmountError) Error() string { return "amount must be a non-negative base-10 integer" }

// StabilityPoolEngine is the subset of stabilitypool.Engine the RPC module
// drives; declared locally so the module can be tested against a fake.
type StabilityPoolEngine interface {
	ProvideToStabilityPool(caller crypto.Address, amount *big.Int, frontEndTag crypto.Address, tagged bool) error
	WithdrawFromStabilityPool(caller crypto.Address, amount *big.Int) error
	WithdrawCollateralGainToTrove(caller, upperHint, lowerHint crypto.Address) error
	RegisterFrontEnd(caller crypto.Address, kickbackRate *big.Int) error
	Offset(caller crypto.Address, debtToOffset, collToAdd *big.Int) error
	GetCompoundedDeposit(addr crypto.Address) (*big.Int, error)
	GetDepositorCollateralGain(addr crypto.Address) (*big.Int, error)
	GetDepositorLOANGain(addr crypto.Address) (*big.Int, error)
	GetFrontEndLOANGain(addr crypto.Address) (*big.Int, error)
	GetCompoundedFrontEndStake(addr crypto.Address) (*big.Int, error)
	GetFURFIBalance() (*big.Int, error)
	GetTotalFURUSDDeposits() (*big.Int, error)
}

var _ StabilityPoolEngine = (*stabilitypool.Engine)(nil)

// StabilityPoolModule exposes the Stability Pool's depositor-facing
// operations and views, plus a JWT-gated administrative surface for the
// Trove Manager's offset call, as a JSON-RPC-over-HTTP service.
type StabilityPoolModule struct {
	engine     StabilityPoolEngine
	log        *slog.Logger
	jwtSecret  []byte
	jwtIssuer  string
	adminSubs  map[string]struct{}
	metrics    interface {
		ObserveDeposit(ok bool)
		ObserveWithdrawal(ok bool)
	}

	quota      nativecommon.Quota
	quotaMu    sync.Mutex
	quotaState map[string]nativecommon.QuotaNow
}

// NewStabilityPoolModule constructs a module bound to engine. jwtSecret and
// adminSubjects gate the administrative routes; logger defaults to the
// process-wide slog logger when nil. quota throttles requests per client
// address; a zero-value Quota (MaxRequestsPerMin == 0) disables throttling,
// per nativecommon.CheckQuota's own "0 means unlimited" convention.
func NewStabilityPoolModule(engine StabilityPoolEngine, jwtSecret, jwtIssuer string, adminSubjects []string, quota nativecommon.Quota, logger *slog.Logger) *StabilityPoolModule {
	if logger == nil {
		logger = slog.Default()
	}
	subs := make(map[string]struct{}, len(adminSubjects))
	for _, sub := range adminSubjects {
		if trimmed := strings.TrimSpace(sub); trimmed != "" {
			subs[trimmed] = struct{}{}
		}
	}
	return &StabilityPoolModule{
		engine:     engine,
		log:        logger,
		jwtSecret:  []byte(jwtSecret),
		jwtIssuer:  jwtIssuer,
		adminSubs:  subs,
		metrics:    metrics.StabilityPool(),
		quota:      quota,
		quotaState: make(map[string]nativecommon.QuotaNow),
	}
}

// Routes mounts the module's handlers on a fresh chi router.
func (m *StabilityPoolModule) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(m.correlationMiddleware)
	r.Use(m.quotaMiddleware)

	r.Post("/provide", m.handleProvide)
	r.Post("/withdraw", m.handleWithdraw)
	r.Post("/withdraw-collateral-gain-to-trove", m.handleWithdrawCollateralGainToTrove)
	r.Post("/register-front-end", m.handleRegisterFrontEnd)
	r.Get("/deposits/{addr}/compounded", m.handleGetCompoundedDeposit)
	r.Get("/deposits/{addr}/collateral-gain", m.handleGetDepositorCollateralGain)
	r.Get("/deposits/{addr}/loan-gain", m.handleGetDepositorLOANGain)
	r.Get("/frontends/{addr}/loan-gain", m.handleGetFrontEndLOANGain)
	r.Get("/frontends/{addr}/compounded-stake", m.handleGetCompoundedFrontEndStake)
	r.Get("/pool/furfi-balance", m.handleGetFURFIBalance)
	r.Get("/pool/total-deposits", m.handleGetTotalFURUSDDeposits)

	r.Group(func(admin chi.Router) {
		admin.Use(m.jwtMiddleware)
		admin.Post("/admin/offset", m.handleOffset)
	})
	return r
}

func (m *StabilityPoolModule) correlationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		m.log.Info("stabilitypool request",
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", wrapped.status),
			slog.Duration("duration", time.Since(start)),
		)
		observability.ModuleMetrics().Observe(stabilityPoolModuleName, r.URL.Path, wrapped.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// jwtMiddleware requires a bearer token signed with the configured secret
// whose subject is in the admin allow-list, gating the Trove Manager's
// offset entry point per the administrative-RPC design.
func (m *StabilityPoolModule) jwtMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeModuleError(w, &ModuleError{HTTPStatus: http.StatusUnauthorized, Code: codeServerError, Message: "missing bearer token"})
			return
		}
		claims := jwt.MapClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			return m.jwtSecret, nil
		}, jwt.WithIssuer(m.jwtIssuer))
		if err != nil || !parsed.Valid {
			writeModuleError(w, &ModuleError{HTTPStatus: http.StatusUnauthorized, Code: codeServerError, Message: "invalid bearer token"})
			return
		}
		subject, _ := claims.GetSubject()
		if _, allowed := m.adminSubs[subject]; !allowed {
			writeModuleError(w, &ModuleError{HTTPStatus: http.StatusForbidden, Code: codeServerError, Message: "subject not authorized for this method"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// quotaMiddleware enforces MaxRequestsPerMin per client address via
// nativecommon.CheckQuota, mirroring the epoch-bucketed counter the teacher's
// native/system/quotas store persists on-chain, kept in memory here since the
// RPC surface has no block-epoch clock of its own.
func (m *StabilityPoolModule) quotaMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.quota.MaxRequestsPerMin == 0 {
			next.ServeHTTP(w, r)
			return
		}
		epochSeconds := m.quota.EpochSeconds
		if epochSeconds == 0 {
			epochSeconds = 60
		}
		epoch := uint64(time.Now().Unix()) / uint64(epochSeconds)
		key := clientKey(r)

		m.quotaMu.Lock()
		updated, err := nativecommon.CheckQuota(m.quota, epoch, m.quotaState[key], 1, 0)
		if err == nil {
			m.quotaState[key] = updated
		}
		m.quotaMu.Unlock()

		if err != nil {
			writeModuleError(w, &ModuleError{HTTPStatus: http.StatusTooManyRequests, Code: codeRateLimited, Message: err.Error()})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey identifies the caller for quota purposes: the first
// X-Forwarded-For hop behind a proxy, otherwise the connection's remote IP.
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type provideRequest struct {
	Caller      string `json:"caller"`
	Amount      string `json:"amount"`
	FrontEndTag string `json:"front_end_tag,omitempty"`
}

func (m *StabilityPoolModule) handleProvide(w http.ResponseWriter, r *http.Request) {
	var req provideRequest
	if err := decodeJSON(r, &req); err != nil {
		writeModuleError(w, badRequest(err))
		return
	}
	caller, err := crypto.DecodeAddress(req.Caller)
	if err != nil {
		writeModuleError(w, badRequest(err))
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		writeModuleError(w, badRequest(errBadAmount))
		return
	}
	var tag crypto.Address
	tagged := req.FrontEndTag != ""
	if tagged {
		tag, err = crypto.DecodeAddress(req.FrontEndTag)
		if err != nil {
			writeModuleError(w, badRequest(err))
			return
		}
	}
	err = m.engine.ProvideToStabilityPool(caller, amount, tag, tagged)
	m.metrics.ObserveDeposit(err == nil)
	if err != nil {
		writeModuleError(w, serverError(err))
		return
	}
	m.log.Info("provide_to_stability_pool", logging.MaskField("caller", caller.String()), slog.String("amount", amount.String()))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type withdrawRequest struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
}

func (m *StabilityPoolModule) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := decodeJSON(r, &req); err != nil {
		writeModuleError(w, badRequest(err))
		return
	}
	caller, err := crypto.DecodeAddress(req.Caller)
	if err != nil {
		writeModuleError(w, badRequest(err))
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		writeModuleError(w, badRequest(errBadAmount))
		return
	}
	err = m.engine.WithdrawFromStabilityPool(caller, amount)
	m.metrics.ObserveWithdrawal(err == nil)
	if err != nil {
		writeModuleError(w, serverError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type withdrawToTroveRequest struct {
	Caller     string `json:"caller"`
	UpperHint  string `json:"upper_hint"`
	LowerHint  string `json:"lower_hint"`
}

func (m *StabilityPoolModule) handleWithdrawCollateralGainToTrove(w http.ResponseWriter, r *http.Request) {
	var req withdrawToTroveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeModuleError(w, badRequest(err))
		return
	}
	caller, err := crypto.DecodeAddress(req.Caller)
	if err != nil {
		writeModuleError(w, badRequest(err))
		return
	}
	upper, err := decodeOptionalAddress(req.UpperHint)
	if err != nil {
		writeModuleError(w, badRequest(err))
		return
	}
	lower, err := decodeOptionalAddress(req.LowerHint)
	if err != nil {
		writeModuleError(w, badRequest(err))
		return
	}
	if err := m.engine.WithdrawCollateralGainToTrove(caller, upper, lower); err != nil {
		writeModuleError(w, serverError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type registerFrontEndRequest struct {
	Caller       string `json:"caller"`
	KickbackRate string `json:"kickback_rate"`
}

func (m *StabilityPoolModule) handleRegisterFrontEnd(w http.ResponseWriter, r *http.Request) {
	var req registerFrontEndRequest
	if err := decodeJSON(r, &req); err != nil {
		writeModuleError(w, badRequest(err))
		return
	}
	caller, err := crypto.DecodeAddress(req.Caller)
	if err != nil {
		writeModuleError(w, badRequest(err))
		return
	}
	rate, ok := parseAmount(req.KickbackRate)
	if !ok {
		writeModuleError(w, badRequest(errBadAmount))
		return
	}
	if err := m.engine.RegisterFrontEnd(caller, rate); err != nil {
		writeModuleError(w, serverError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type offsetRequest struct {
	Caller        string `json:"caller"`
	DebtToOffset  string `json:"debt_to_offset"`
	CollToAdd     string `json:"coll_to_add"`
}

func (m *StabilityPoolModule) handleOffset(w http.ResponseWriter, r *http.Request) {
	var req offsetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeModuleError(w, badRequest(err))
		return
	}
	caller, err := crypto.DecodeAddress(req.Caller)
	if err != nil {
		writeModuleError(w, badRequest(err))
		return
	}
	debt, ok := parseAmount(req.DebtToOffset)
	if !ok {
		writeModuleError(w, badRequest(errBadAmount))
		return
	}
	coll, ok := parseAmount(req.CollToAdd)
	if !ok {
		writeModuleError(w, badRequest(errBadAmount))
		return
	}
	if err := m.engine.Offset(caller, debt, coll); err != nil {
		writeModuleError(w, serverError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (m *StabilityPoolModule) handleGetCompoundedDeposit(w http.ResponseWriter, r *http.Request) {
	m.writeAddressView(w, r, m.engine.GetCompoundedDeposit)
}

func (m *StabilityPoolModule) handleGetDepositorCollateralGain(w http.ResponseWriter, r *http.Request) {
	m.writeAddressView(w, r, m.engine.GetDepositorCollateralGain)
}

func (m *StabilityPoolModule) handleGetDepositorLOANGain(w http.ResponseWriter, r *http.Request) {
	m.writeAddressView(w, r, m.engine.GetDepositorLOANGain)
}

func (m *StabilityPoolModule) handleGetFrontEndLOANGain(w http.ResponseWriter, r *http.Request) {
	m.writeAddressView(w, r, m.engine.GetFrontEndLOANGain)
}

func (m *StabilityPoolModule) handleGetCompoundedFrontEndStake(w http.ResponseWriter, r *http.Request) {
	m.writeAddressView(w, r, m.engine.GetCompoundedFrontEndStake)
}

func (m *StabilityPoolModule) writeAddressView(w http.ResponseWriter, r *http.Request, view func(crypto.Address) (*big.Int, error)) {
	addr, err := crypto.DecodeAddress(chi.URLParam(r, "addr"))
	if err != nil {
		writeModuleError(w, badRequest(err))
		return
	}
	value, err := view(addr)
	if err != nil {
		writeModuleError(w, serverError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"value": value.String()})
}

func (m *StabilityPoolModule) handleGetFURFIBalance(w http.ResponseWriter, r *http.Request) {
	value, err := m.engine.GetFURFIBalance()
	if err != nil {
		writeModuleError(w, serverError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"value": value.String()})
}

func (m *StabilityPoolModule) handleGetTotalFURUSDDeposits(w http.ResponseWriter, r *http.Request) {
	value, err := m.engine.GetTotalFURUSDDeposits()
	if err != nil {
		writeModuleError(w, serverError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"value": value.String()})
}

func decodeOptionalAddress(raw string) (crypto.Address, error) {
	if raw == "" {
		return crypto.Address{}, nil
	}
	return crypto.DecodeAddress(raw)
}

func parseAmount(raw string) (*big.Int, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, false
	}
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok || amount.Sign() < 0 {
		return nil, false
	}
	return amount, true
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeModuleError(w http.ResponseWriter, moduleErr *ModuleError) {
	writeJSON(w, moduleErr.HTTPStatus, map[string]interface{}{
		"code":    moduleErr.Code,
		"message": moduleErr.Message,
	})
}

func badRequest(err error) *ModuleError {
	return &ModuleError{HTTPStatus: http.StatusBadRequest, Code: codeInvalidParams, Message: err.Error()}
}

func serverError(err error) *ModuleError {
	return &ModuleError{HTTPStatus: http.StatusInternalServerError, Code: codeServerError, Message: err.Error()}
}
