package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/client/notify"
	"github.com/dmitrijs2005/gophchat/internal/client/repositories/kv"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// CodeLength is the number of digits in a one-time code.
const CodeLength = 6

// ErrWrongStep is returned when an operation is invoked from a step that
// does not allow it.
var ErrWrongStep = errors.New("operation not allowed in current step")

type Step string

const (
	StepPhone    Step = "phone"
	StepOTP      Step = "otp"
	StepVerified Step = "verified"
)

// State is a snapshot of the flow. Err holds the last validation or
// verification message and is cleared by the next successful transition.
type State struct {
	Step        Step
	Phone       string
	CountryCode string
	Cooldown    int
	CanResend   bool
	Err         string
	Attempts    int
}

// Completer receives the verified user. The session manager implements it.
type Completer interface {
	Login(ctx context.Context, user *models.User, token string) error
}

// Options tunes a Flow. Zero values fall back to defaults.
type Options struct {
	// Cooldown is the number of ticks before a resend is allowed (default 60).
	Cooldown int
	// Tick is the length of one cooldown unit (default 1s).
	Tick time.Duration
	// MaxAttempts discards the live code after that many failed
	// verifications. 0 means unlimited.
	MaxAttempts int
	Clock       clockwork.Clock
	// GenerateCode overrides the random code source.
	GenerateCode func() (string, error)
}

// Flow drives phone → otp → verified. It is safe for concurrent use.
type Flow struct {
	session   kv.Store
	completer Completer
	issuer    *TokenIssuer
	notifier  notify.Notifier
	log       logging.Logger

	cooldown    int
	tick        time.Duration
	maxAttempts int
	clock       clockwork.Clock
	genCode     func() (string, error)

	mu          sync.Mutex
	state       State
	gen         uint64
	stopTicker  context.CancelFunc
	subscribers map[int]func(State)
	nextSubID   int
}

func NewFlow(session kv.Store, completer Completer, issuer *TokenIssuer, notifier notify.Notifier, log logging.Logger, opts Options) *Flow {
	if opts.Cooldown <= 0 {
		opts.Cooldown = 60
	}
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.GenerateCode == nil {
		opts.GenerateCode = func() (string, error) { return common.RandomDigits(CodeLength) }
	}
	return &Flow{
		session:     session,
		completer:   completer,
		issuer:      issuer,
		notifier:    notifier,
		log:         log,
		cooldown:    opts.Cooldown,
		tick:        opts.Tick,
		maxAttempts: opts.MaxAttempts,
		clock:       opts.Clock,
		genCode:     opts.GenerateCode,
		state:       State{Step: StepPhone, CanResend: true},
		subscribers: make(map[int]func(State)),
	}
}

// State returns the current snapshot.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Subscribe registers fn to receive a snapshot after every change, including
// cooldown ticks. fn runs on the goroutine that caused the change and must
// not call back into the Flow synchronously. The returned func unsubscribes.
func (f *Flow) Subscribe(fn func(State)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextSubID
	f.nextSubID++
	f.subscribers[id] = fn

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subscribers, id)
	}
}

// RequestCode issues a new code for phone and moves to the otp step.
// Non-digits are stripped from phone before use.
func (f *Flow) RequestCode(ctx context.Context, phone, countryCode string) error {
	f.mu.Lock()
	if f.state.Step != StepPhone {
		f.mu.Unlock()
		return ErrWrongStep
	}

	digits := common.DigitsOnly(phone)
	if digits == "" {
		return f.failLocked(fmt.Errorf("%w: phone number is empty", common.ErrValidation), "Please enter a valid phone number")
	}
	if !validCountryCode(countryCode) {
		return f.failLocked(fmt.Errorf("%w: country code %q", common.ErrValidation, countryCode), "Please select a country")
	}

	if err := f.issueLocked(ctx, digits, countryCode); err != nil {
		f.mu.Unlock()
		return err
	}
	f.state.Step = StepOTP
	f.state.Phone = digits
	f.state.CountryCode = countryCode
	f.state.Attempts = 0
	f.state.Err = ""
	f.commit()
	return nil
}

// Resend re-issues the code for the current phone. It reports false and does
// nothing while the cooldown is running or outside the otp step.
func (f *Flow) Resend(ctx context.Context) (bool, error) {
	f.mu.Lock()
	if f.state.Step != StepOTP || !f.state.CanResend {
		f.mu.Unlock()
		return false, nil
	}

	if err := f.issueLocked(ctx, f.state.Phone, f.state.CountryCode); err != nil {
		f.mu.Unlock()
		return false, err
	}
	f.state.Attempts = 0
	f.state.Err = ""
	f.commit()
	return true, nil
}

// VerifyCode checks code against the live challenge. On success the
// challenge is consumed, the user is handed to the Completer and the flow
// reaches the verified step.
func (f *Flow) VerifyCode(ctx context.Context, code string) (*models.User, error) {
	f.mu.Lock()
	if f.state.Step != StepOTP {
		f.mu.Unlock()
		return nil, ErrWrongStep
	}

	if len(code) != CodeLength || !common.IsDigits(code) {
		return nil, f.failLocked(fmt.Errorf("%w: code must be %d digits", common.ErrValidation, CodeLength), "Please enter a 6-digit code")
	}

	challenge, err := f.loadChallenge(ctx)
	if err != nil {
		f.mu.Unlock()
		return nil, err
	}
	if challenge == nil || challenge.TargetPhone != f.state.Phone {
		f.notifier.Notify("Verification failed", "No active code, request a new one", notify.KindError)
		return nil, f.failLocked(fmt.Errorf("%w: no active code", common.ErrVerification), "No active code, please resend")
	}

	if subtle.ConstantTimeCompare([]byte(code), []byte(challenge.Code)) != 1 {
		return nil, f.rejectLocked(ctx)
	}

	user := &models.User{
		ID:          uuid.NewString(),
		Phone:       f.state.Phone,
		CountryCode: f.state.CountryCode,
		CreatedAt:   f.clock.Now().UTC(),
	}
	token, err := f.issuer.Issue(user)
	if err != nil {
		f.mu.Unlock()
		return nil, err
	}
	if err := f.completer.Login(ctx, user, token); err != nil {
		f.mu.Unlock()
		return nil, fmt.Errorf("complete login: %w", err)
	}
	if err := f.clearChallenge(ctx); err != nil {
		f.log.Warn(ctx, "failed to clear otp challenge", "error", err)
	}

	f.stopCooldownLocked()
	f.state.Step = StepVerified
	f.state.Cooldown = 0
	f.state.CanResend = false
	f.state.Err = ""
	f.log.Info(ctx, "otp verified", "user_id", user.ID)
	f.notifier.Notify("Verified", "Welcome!", notify.KindSuccess)
	f.commit()
	return user, nil
}

// GoBack returns from otp to phone, keeping the entered phone number.
// It is a no-op in any other step.
func (f *Flow) GoBack(ctx context.Context) {
	f.mu.Lock()
	if f.state.Step != StepOTP {
		f.mu.Unlock()
		return
	}

	f.stopCooldownLocked()
	if err := f.clearChallenge(ctx); err != nil {
		f.log.Warn(ctx, "failed to clear otp challenge", "error", err)
	}
	f.state.Step = StepPhone
	f.state.Cooldown = 0
	f.state.CanResend = true
	f.state.Err = ""
	f.state.Attempts = 0
	f.commit()
}

// Reset drops all progress, e.g. after logout.
func (f *Flow) Reset(ctx context.Context) {
	f.mu.Lock()
	f.stopCooldownLocked()
	if err := f.clearChallenge(ctx); err != nil {
		f.log.Warn(ctx, "failed to clear otp challenge", "error", err)
	}
	f.state = State{Step: StepPhone, CanResend: true}
	f.commit()
}

// issueLocked generates and stores a fresh challenge and restarts the
// cooldown.
func (f *Flow) issueLocked(ctx context.Context, phone, countryCode string) error {
	code, err := f.genCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	err = f.session.WithTx(ctx, func(ctx context.Context, s kv.Store) error {
		if err := s.Set(ctx, common.OTPCodeKey, []byte(code)); err != nil {
			return err
		}
		return s.Set(ctx, common.OTPPhoneKey, []byte(phone))
	})
	if err != nil {
		return fmt.Errorf("store otp challenge: %w", err)
	}

	f.state.Cooldown = f.cooldown
	f.state.CanResend = false
	f.startCooldownLocked()

	f.log.Info(ctx, "otp issued", "phone", phone, "country_code", countryCode)
	f.notifier.Notify("Code sent", fmt.Sprintf("Your verification code for %s %s is %s", countryCode, phone, code), notify.KindInfo)
	return nil
}

func (f *Flow) loadChallenge(ctx context.Context) (*models.OTPChallenge, error) {
	code, err := f.session.Get(ctx, common.OTPCodeKey)
	if err != nil {
		return nil, fmt.Errorf("load otp challenge: %w", err)
	}
	phone, err := f.session.Get(ctx, common.OTPPhoneKey)
	if err != nil {
		return nil, fmt.Errorf("load otp challenge: %w", err)
	}
	if code == nil || phone == nil {
		return nil, nil
	}
	return &models.OTPChallenge{Code: string(code), TargetPhone: string(phone)}, nil
}

func (f *Flow) clearChallenge(ctx context.Context) error {
	return f.session.WithTx(ctx, func(ctx context.Context, s kv.Store) error {
		if err := s.Delete(ctx, common.OTPCodeKey); err != nil {
			return err
		}
		return s.Delete(ctx, common.OTPPhoneKey)
	})
}

// rejectLocked records a mismatch. Past MaxAttempts the challenge is
// dropped and a resend is allowed immediately.
func (f *Flow) rejectLocked(ctx context.Context) error {
	f.state.Attempts++
	f.log.Info(ctx, "otp verification failed", "phone", f.state.Phone, "attempts", f.state.Attempts)
	f.notifier.Notify("Verification failed", "Invalid code", notify.KindError)

	msg := "Invalid code, please try again"
	if f.maxAttempts > 0 && f.state.Attempts >= f.maxAttempts {
		if err := f.clearChallenge(ctx); err != nil {
			f.log.Warn(ctx, "failed to clear otp challenge", "error", err)
		}
		f.stopCooldownLocked()
		f.state.Cooldown = 0
		f.state.CanResend = true
		msg = "Too many attempts, please request a new code"
	}
	return f.failLocked(fmt.Errorf("%w: code mismatch", common.ErrVerification), msg)
}

// failLocked stores msg as the visible error, publishes and unlocks.
func (f *Flow) failLocked(err error, msg string) error {
	f.state.Err = msg
	f.commit()
	return err
}

// commit publishes the current state to subscribers and releases f.mu.
func (f *Flow) commit() {
	snapshot := f.state
	subs := make([]func(State), 0, len(f.subscribers))
	for _, fn := range f.subscribers {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func (f *Flow) startCooldownLocked() {
	f.stopCooldownLocked()

	ctx, cancel := context.WithCancel(context.Background())
	f.stopTicker = cancel
	f.gen++
	gen := f.gen
	ticker := f.clock.NewTicker(f.tick)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				if !f.countdown(gen) {
					return
				}
			}
		}
	}()
}

func (f *Flow) stopCooldownLocked() {
	if f.stopTicker != nil {
		f.stopTicker()
		f.stopTicker = nil
	}
	f.gen++
}

// countdown applies one tick and reports whether the ticker should keep
// running.
func (f *Flow) countdown(gen uint64) bool {
	f.mu.Lock()
	if gen != f.gen || f.state.Step != StepOTP || f.state.Cooldown <= 0 {
		f.mu.Unlock()
		return false
	}

	f.state.Cooldown--
	more := f.state.Cooldown > 0
	if !more {
		f.state.CanResend = true
	}
	f.commit()
	return more
}

func validCountryCode(c string) bool {
	return len(c) >= 2 && c[0] == '+' && common.IsDigits(c[1:])
}
